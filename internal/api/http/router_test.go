package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/supportops/internal/api/dto"
	"github.com/spec-kit/supportops/internal/api/http/handlers"
	"github.com/spec-kit/supportops/internal/config"
	"github.com/spec-kit/supportops/internal/domain"
	"github.com/spec-kit/supportops/internal/events"
	"github.com/spec-kit/supportops/internal/observability"
	"github.com/spec-kit/supportops/internal/persistence"
	"github.com/spec-kit/supportops/internal/realtime"
	"github.com/spec-kit/supportops/internal/repository"
	"github.com/spec-kit/supportops/internal/service"
	"github.com/spec-kit/supportops/internal/triage"
	"github.com/spec-kit/supportops/internal/worker"
)

type harness struct {
	app     *fiber.App
	repo    repository.MemoryTicketRepository
	hub     *realtime.Hub
	metrics *observability.Metrics
}

type harnessOptions struct {
	generator triage.Generator
	redis     handlers.Pinger
	panicky   bool
	webhook   string
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	repo := repository.NewMemoryTicketRepository()
	service.SeedSampleTicket(repo, time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC))

	dispatcher := events.NewInMemoryDispatcher()
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repo,
		Enricher:   triage.NewTriager(opts.generator, 50*time.Millisecond, logger, metrics),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	hub := realtime.NewHub(ticketService.ListTickets, 8, logger)
	t.Cleanup(hub.Close)
	worker.StartBroadcastWorker(dispatcher, realtime.NewHubNotifier(hub), logger)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, config.NotificationConfig{WebhookURL: opts.webhook}))

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	if opts.panicky {
		app.Get("/boom", func(c *fiber.Ctx) error { panic("kaboom") })
	}
	RegisterRoutes(app, RouteConfig{
		Health:   handlers.NewHealthHandler("supportops", "test", opts.redis),
		Tickets:  handlers.NewTicketsHandler(ticketService),
		Metrics:  handlers.NewMetricsHandler(metrics),
		Realtime: realtime.Handler(hub, logger),
	})
	return &harness{app: app, repo: repo, hub: hub, metrics: metrics}
}

func (h *harness) do(t *testing.T, method, path, contentType, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	resp, err := h.app.Test(req, 2000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func (h *harness) list(t *testing.T) []dto.TicketResponse {
	t.Helper()
	status, body := h.do(t, fiber.MethodGet, "/api/tickets", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("GET /api/tickets status = %d body=%s", status, body)
	}
	var tickets []dto.TicketResponse
	if err := json.Unmarshal(body, &tickets); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return tickets
}

type chanConn struct {
	messages chan realtime.Message
}

func (c *chanConn) WriteJSON(v interface{}) error {
	c.messages <- v.(realtime.Message)
	return nil
}

func (c *chanConn) WriteControl(int, []byte, time.Time) error { return nil }

func (c *chanConn) SetReadDeadline(time.Time) error { return nil }

func (c *chanConn) Close() error { return nil }

func (c *chanConn) next(t *testing.T) realtime.Message {
	t.Helper()
	select {
	case msg := <-c.messages:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no realtime message")
		return realtime.Message{}
	}
}

func (h *harness) connect(t *testing.T) *chanConn {
	t.Helper()
	conn := &chanConn{messages: make(chan realtime.Message, 8)}
	client, err := h.hub.Register(context.Background(), conn)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	go client.WritePump()
	return conn
}

func TestListReturnsSeededTicket(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	tickets := h.list(t)
	if len(tickets) != 1 {
		t.Fatalf("tickets = %+v", tickets)
	}
	sample := tickets[0]
	if sample.ID != 1 || sample.Title != "Sample ticket: internet down" || sample.Status != domain.TicketStatusNew || sample.Priority != domain.TicketPriorityMedium {
		t.Errorf("sample = %+v", sample)
	}
}

func TestCreateTicketEnriched(t *testing.T) {
	h := newHarness(t, harnessOptions{generator: triage.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Classify") {
			return " HIGH.", nil
		}
		return "  We are on it.  ", nil
	})})

	status, body := h.do(t, fiber.MethodPost, "/api/tickets", fiber.MIMEApplicationJSON, `{"title":"VPN drops every hour"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("status = %d body=%s", status, body)
	}
	var created dto.TicketResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Priority != domain.TicketPriorityHigh || created.SuggestedReply != "  We are on it.  " {
		t.Errorf("created = %+v", created)
	}

	tickets := h.list(t)
	if len(tickets) != 2 || tickets[0].ID != created.ID || tickets[0].Title != "VPN drops every hour" {
		t.Errorf("list = %+v", tickets)
	}
	if created.ID <= 1 {
		t.Errorf("id = %d, want greater than seeded id", created.ID)
	}
}

func TestCreateTicketRejectsMissingTitle(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	cases := []struct {
		name        string
		contentType string
		body        string
		wantError   string
	}{
		{name: "empty object", contentType: fiber.MIMEApplicationJSON, body: `{}`, wantError: "title required"},
		{name: "blank title", contentType: fiber.MIMEApplicationJSON, body: `{"title":"   "}`, wantError: "title required"},
		{name: "no body", wantError: "title required"},
		{name: "not json", contentType: fiber.MIMETextPlain, body: "printer jam", wantError: "title required"},
		{name: "malformed json", contentType: fiber.MIMEApplicationJSON, body: `{"title":`, wantError: "invalid payload"},
		{name: "title not a string", contentType: fiber.MIMEApplicationJSON, body: `{"title":42}`, wantError: "invalid payload"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := h.do(t, fiber.MethodPost, "/api/tickets", tc.contentType, tc.body)
			if status != fiber.StatusBadRequest {
				t.Fatalf("status = %d body=%s", status, body)
			}
			var errResp dto.ErrorResponse
			if err := json.Unmarshal(body, &errResp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if errResp.Error != tc.wantError || errResp.Code != "VALIDATION_FAILED" {
				t.Errorf("error = %+v", errResp)
			}
		})
	}
	if tickets := h.list(t); len(tickets) != 1 {
		t.Errorf("store changed by rejected requests: %+v", tickets)
	}
}

func TestCreateTicketFallsBackAndBroadcasts(t *testing.T) {
	h := newHarness(t, harnessOptions{generator: triage.Static{Err: errors.New("dial tcp: connection refused")}})
	conn := h.connect(t)
	if msg := conn.next(t); msg.Event != realtime.EventInit {
		t.Fatalf("first event = %q", msg.Event)
	}

	status, body := h.do(t, fiber.MethodPost, "/api/tickets", fiber.MIMEApplicationJSON, `{"title":"printer jam"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("status = %d body=%s", status, body)
	}
	var created dto.TicketResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Priority != domain.TicketPriorityMedium || created.SuggestedReply != "" || created.Title != "printer jam" {
		t.Errorf("created = %+v", created)
	}

	msg := conn.next(t)
	if msg.Event != realtime.EventTicketNew {
		t.Fatalf("event = %q", msg.Event)
	}
	broadcast := msg.Data.(dto.TicketResponse)
	if broadcast.ID != created.ID || broadcast.Priority != created.Priority || broadcast.SuggestedReply != created.SuggestedReply {
		t.Errorf("broadcast = %+v, created = %+v", broadcast, created)
	}
	if got := h.metrics.Snapshot().Triage[observability.TriageFallback]; got != 1 {
		t.Errorf("fallback count = %d", got)
	}
}

func TestCreateTicketTimeoutIsBounded(t *testing.T) {
	h := newHarness(t, harnessOptions{generator: triage.GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})})

	start := time.Now()
	status, body := h.do(t, fiber.MethodPost, "/api/tickets", fiber.MIMEApplicationJSON, `{"title":"slow model"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("status = %d body=%s", status, body)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("request took %v", elapsed)
	}
	var created dto.TicketResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Priority != domain.TicketPriorityMedium || created.SuggestedReply != "" {
		t.Errorf("created = %+v", created)
	}
}

func TestInitSnapshotMatchesList(t *testing.T) {
	h := newHarness(t, harnessOptions{generator: triage.Static{Text: "low"}})
	h.do(t, fiber.MethodPost, "/api/tickets", fiber.MIMEApplicationJSON, `{"title":"mouse squeaks"}`)

	conn := h.connect(t)
	msg := conn.next(t)
	if msg.Event != realtime.EventInit {
		t.Fatalf("event = %q", msg.Event)
	}
	initJSON, err := json.Marshal(msg.Data.(realtime.InitPayload).Tickets)
	if err != nil {
		t.Fatalf("marshal init: %v", err)
	}
	_, listJSON := h.do(t, fiber.MethodGet, "/api/tickets", "", "")

	var fromInit, fromList []map[string]any
	if err := json.Unmarshal(initJSON, &fromInit); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(listJSON, &fromList); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fromInit, fromList) {
		t.Errorf("init = %v\nlist = %v", fromInit, fromList)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	status, body := h.do(t, fiber.MethodGet, "/health", "", "")
	if status != fiber.StatusOK || strings.TrimSpace(string(body)) != `{"status":"ok"}` {
		t.Errorf("health = %d %s", status, body)
	}
	status, body = h.do(t, fiber.MethodGet, "/health/live", "", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), `"alive"`) {
		t.Errorf("live = %d %s", status, body)
	}
	status, body = h.do(t, fiber.MethodGet, "/health/ready", "", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), `"ready"`) {
		t.Errorf("ready = %d %s", status, body)
	}
}

func TestReadinessChecksRedis(t *testing.T) {
	server := miniredis.RunT(t)
	redis := persistence.NewRedis(context.Background(), config.RedisConfig{Addr: server.Addr()}, zap.NewNop())
	t.Cleanup(redis.Close)
	h := newHarness(t, harnessOptions{redis: redis})

	if status, body := h.do(t, fiber.MethodGet, "/health/ready", "", ""); status != fiber.StatusOK {
		t.Fatalf("ready = %d %s", status, body)
	}

	server.Close()
	status, body := h.do(t, fiber.MethodGet, "/health/ready", "", "")
	if status != fiber.StatusServiceUnavailable {
		t.Fatalf("ready after redis loss = %d %s", status, body)
	}
	var errResp dto.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.Code != "DEPENDENCY_UNAVAILABLE" || errResp.Details["redis"] == nil {
		t.Errorf("error = %+v", errResp)
	}

	// /health stays up regardless.
	if status, _ := h.do(t, fiber.MethodGet, "/health", "", ""); status != fiber.StatusOK {
		t.Errorf("health = %d", status)
	}
}

func TestPanicBecomesInternalError(t *testing.T) {
	h := newHarness(t, harnessOptions{panicky: true})
	status, body := h.do(t, fiber.MethodGet, "/boom", "", "")
	if status != fiber.StatusInternalServerError {
		t.Fatalf("status = %d", status)
	}
	var errResp dto.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.Error != "internal error" {
		t.Errorf("error = %+v", errResp)
	}

	// The process keeps serving.
	if status, _ := h.do(t, fiber.MethodGet, "/health", "", ""); status != fiber.StatusOK {
		t.Errorf("health after panic = %d", status)
	}
}

func TestUnknownRouteAndPlainWebsocketRequest(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	status, body := h.do(t, fiber.MethodGet, "/nope", "", "")
	if status != fiber.StatusNotFound || !strings.Contains(string(body), `"NOT_FOUND"`) {
		t.Errorf("unknown route = %d %s", status, body)
	}
	status, body = h.do(t, fiber.MethodGet, "/ws", "", "")
	if status != fiber.StatusUpgradeRequired || !strings.Contains(string(body), `"UPGRADE_REQUIRED"`) {
		t.Errorf("plain /ws = %d %s", status, body)
	}
}

func TestMetricsSnapshot(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.list(t)

	status, body := h.do(t, fiber.MethodGet, "/metrics", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var snapshot observability.Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snapshot.Requests["/api/tickets|GET|200"] != 1 {
		t.Errorf("requests = %v", snapshot.Requests)
	}
	if snapshot.Triage == nil {
		t.Error("triage counters missing")
	}
}

func TestStalledWebhookDoesNotDelayCreate(t *testing.T) {
	release := make(chan struct{})
	webhook := httptest.NewServer(nethttp.HandlerFunc(func(nethttp.ResponseWriter, *nethttp.Request) {
		<-release
	}))
	t.Cleanup(webhook.Close)
	t.Cleanup(func() { close(release) })

	h := newHarness(t, harnessOptions{webhook: webhook.URL})
	conn := h.connect(t)
	conn.next(t)

	start := time.Now()
	status, body := h.do(t, fiber.MethodPost, "/api/tickets", fiber.MIMEApplicationJSON, `{"title":"printer jam"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("status = %d body=%s", status, body)
	}
	msg := conn.next(t)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("create and broadcast took %v", elapsed)
	}
	if msg.Event != realtime.EventTicketNew || msg.Data.(dto.TicketResponse).Title != "printer jam" {
		t.Errorf("msg = %+v", msg)
	}
}

func TestCreateTicketKeepsTitleAndReplyVerbatim(t *testing.T) {
	h := newHarness(t, harnessOptions{generator: triage.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Classify") {
			return "low", nil
		}
		return "\nRestart the router.\n", nil
	})})

	status, body := h.do(t, fiber.MethodPost, "/api/tickets", fiber.MIMEApplicationJSON, `{"title":"  wifi keeps dropping  "}`)
	if status != fiber.StatusCreated {
		t.Fatalf("status = %d body=%s", status, body)
	}
	var created dto.TicketResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, ticket := range h.list(t) {
		if ticket.ID != created.ID {
			continue
		}
		if ticket.Title != "  wifi keeps dropping  " {
			t.Errorf("title = %q", ticket.Title)
		}
		if ticket.SuggestedReply != "\nRestart the router.\n" {
			t.Errorf("reply = %q", ticket.SuggestedReply)
		}
		return
	}
	t.Fatalf("ticket %d not listed", created.ID)
}
