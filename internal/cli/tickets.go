package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/supportops/internal/api/dto"
)

func init() {
	tickets := &cobra.Command{
		Use:   "tickets",
		Short: "List and create tickets",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tickets, newest first",
		Args:  cobra.NoArgs,
		RunE:  runTicketsList,
	}

	create := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a ticket",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runTicketsCreate,
	}

	tickets.AddCommand(list, create)
	RootCmd.AddCommand(tickets)
}

func runTicketsList(cmd *cobra.Command, args []string) error {
	if err := validateFormat(); err != nil {
		return err
	}
	tickets, err := newClient().ListTickets(cmd.Context())
	if err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}
	if formatFlag == "text" {
		for _, ticket := range tickets {
			printTicketLine(cmd.OutOrStdout(), ticket)
		}
		return nil
	}
	return printJSON(cmd.OutOrStdout(), tickets)
}

func runTicketsCreate(cmd *cobra.Command, args []string) error {
	if err := validateFormat(); err != nil {
		return err
	}
	ticket, err := newClient().CreateTicket(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	if formatFlag == "text" {
		printTicketLine(cmd.OutOrStdout(), *ticket)
		if ticket.SuggestedReply != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  reply: %s\n", ticket.SuggestedReply)
		}
		return nil
	}
	return printJSON(cmd.OutOrStdout(), ticket)
}

func printTicketLine(w io.Writer, ticket dto.TicketResponse) {
	fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", ticket.ID, ticket.Priority, ticket.Status, ticket.Title)
}
