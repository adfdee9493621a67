package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"socguard/internal/arbiter"
	"socguard/internal/audit"
	"socguard/internal/confirm"
	"socguard/internal/lockout"
	"socguard/internal/notify"
	"socguard/internal/policy"
	"socguard/internal/ratelimit"
	"socguard/pkg/models"
)

type memLockStore struct {
	mu    sync.Mutex
	state models.LockState
}

func (s *memLockStore) Get(ctx context.Context) (models.LockState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *memLockStore) Engage(ctx context.Context, state models.LockState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Locked {
		return false, nil
	}
	s.state = state
	return true, nil
}

func (s *memLockStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = models.LockState{}
	return nil
}

func (s *memLockStore) Close() error { return nil }

type fakeExec struct {
	resolveErr map[string]error
	isolateErr map[string]error
	isolated   []string
}

func (f *fakeExec) ResolveDeviceID(ctx context.Context, deviceName string) (string, error) {
	if err := f.resolveErr[deviceName]; err != nil {
		return "", err
	}
	return "id-" + deviceName, nil
}

func (f *fakeExec) Isolate(ctx context.Context, machineID string) error {
	if err := f.isolateErr[machineID]; err != nil {
		return err
	}
	f.isolated = append(f.isolated, machineID)
	return nil
}

type harness struct {
	engine *Engine
	store  *audit.MemoryStore
	locks  *memLockStore
	exec   *fakeExec
}

func newHarness(t *testing.T, prompter confirm.Prompter) *harness {
	t.Helper()

	store := audit.NewMemoryStore()
	locks := &memLockStore{}
	exec := &fakeExec{
		resolveErr: make(map[string]error),
		isolateErr: make(map[string]error),
	}
	guard := lockout.NewGuard(locks, store)
	notifier := notify.NewLogNotifier()

	eng, err := New(Deps{
		Actor:      "agent",
		BatchGuard: policy.NewBatchSizeGuard(50, 10),
		Confidence: policy.NewConfidencePolicy(),
		Allowlist:  policy.NewQueryAllowlist(),
		Limiter:    ratelimit.New(store, guard, notifier, ratelimit.Limits{Per5Minutes: 5, PerHour: 10, PerDay: 15}),
		Guard:      guard,
		Arbiter:    arbiter.New(arbiter.Config{Threshold: 10, Phrase: "CONFIRM MASS ISOLATION"}),
		Prompter:   prompter,
		Executor:   exec,
		Store:      store,
		Notifier:   notifier,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &harness{engine: eng, store: store, locks: locks, exec: exec}
}

func hostHunt(threats ...models.Threat) *models.HuntResult {
	return &models.HuntResult{
		HuntID:              "hunt-1",
		Threats:             threats,
		AboutIndividualHost: true,
	}
}

func TestProcessBatchAutoIsolatesCritical(t *testing.T) {
	h := newHarness(t, confirm.NewScripted(nil, nil))

	report, err := h.engine.ProcessBatch(context.Background(), hostHunt(
		models.Threat{Title: "beacon", Confidence: "critical", DeviceName: "ws-01"},
	))
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if report.Isolated != 1 {
		t.Fatalf("Isolated = %d, want 1", report.Isolated)
	}
	if len(h.exec.isolated) != 1 || h.exec.isolated[0] != "id-ws-01" {
		t.Fatalf("isolated machines = %v", h.exec.isolated)
	}

	events := h.store.Events()
	if len(events) != 1 {
		t.Fatalf("expected one isolation event, got %d", len(events))
	}
	ev := events[0]
	if ev.ActionResult != models.ResultSuccess {
		t.Fatalf("ActionResult = %q", ev.ActionResult)
	}
	if ev.UserDecision != "auto_approved" {
		t.Fatalf("UserDecision = %q", ev.UserDecision)
	}
	if ev.DeviceName != "ws-01" || ev.MachineID != "id-ws-01" {
		t.Fatalf("event device fields = %q/%q", ev.DeviceName, ev.MachineID)
	}
}

func TestProcessBatchConfirmationApproved(t *testing.T) {
	prompter := confirm.NewScripted(nil, []bool{true})
	h := newHarness(t, prompter)

	report, err := h.engine.ProcessBatch(context.Background(), hostHunt(
		models.Threat{Title: "odd logon", Confidence: "high", DeviceName: "ws-02"},
	))
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if report.Isolated != 1 {
		t.Fatalf("Isolated = %d, want 1", report.Isolated)
	}
	if len(prompter.IsolationPrompts) != 1 || prompter.IsolationPrompts[0] != "ws-02" {
		t.Fatalf("prompts = %v", prompter.IsolationPrompts)
	}

	events := h.store.Events()
	if len(events) != 1 || events[0].UserDecision != "approved" {
		t.Fatalf("events = %+v", events)
	}
}

func TestProcessBatchConfirmationDeclined(t *testing.T) {
	h := newHarness(t, confirm.NewScripted(nil, []bool{false}))

	report, err := h.engine.ProcessBatch(context.Background(), hostHunt(
		models.Threat{Title: "odd logon", Confidence: "medium", DeviceName: "ws-03"},
	))
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if report.Declined != 1 || report.Isolated != 0 {
		t.Fatalf("report = %+v", report)
	}
	if len(h.exec.isolated) != 0 {
		t.Fatalf("declined threat must not reach the executor")
	}

	events := h.store.Events()
	if len(events) != 1 {
		t.Fatalf("expected one declined event, got %d", len(events))
	}
	if events[0].ActionResult != models.ResultDeclined || events[0].UserDecision != "declined" {
		t.Fatalf("event = %+v", events[0])
	}
	if !events[0].AlertSent {
		t.Fatalf("declined event should mark the alert as sent")
	}
}

func TestProcessBatchUnknownConfidenceRequiresConfirmation(t *testing.T) {
	prompter := confirm.NewScripted(nil, []bool{false})
	h := newHarness(t, prompter)

	if _, err := h.engine.ProcessBatch(context.Background(), hostHunt(
		models.Threat{Title: "weird", Confidence: "severe", DeviceName: "ws-04"},
	)); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if len(prompter.IsolationPrompts) != 1 {
		t.Fatalf("unknown tier must be treated as confirmable, prompts = %v", prompter.IsolationPrompts)
	}
	if len(h.exec.isolated) != 0 {
		t.Fatalf("declined unknown-tier threat must not be isolated")
	}
}

func TestProcessBatchSkipsLowConfidence(t *testing.T) {
	h := newHarness(t, confirm.NewScripted(nil, nil))

	report, err := h.engine.ProcessBatch(context.Background(), hostHunt(
		models.Threat{Title: "noise", Confidence: "low", DeviceName: "ws-05"},
	))
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if report.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", report.Skipped)
	}
	if len(h.store.Events()) != 0 {
		t.Fatalf("skipped threats must not produce isolation events")
	}
}

func TestProcessBatchExecutorFailureContinues(t *testing.T) {
	h := newHarness(t, confirm.NewScripted(nil, nil))
	h.exec.resolveErr["ws-06"] = errors.New("device not found")

	report, err := h.engine.ProcessBatch(context.Background(), hostHunt(
		models.Threat{Title: "a", Confidence: "critical", DeviceName: "ws-06"},
		models.Threat{Title: "b", Confidence: "critical", DeviceName: "ws-07"},
	))
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if report.Failed != 1 || report.Isolated != 1 {
		t.Fatalf("report = %+v", report)
	}

	events := h.store.Events()
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if events[0].ActionResult != models.ResultFailed {
		t.Fatalf("first event = %+v", events[0])
	}
	if events[1].ActionResult != models.ResultSuccess {
		t.Fatalf("second event = %+v", events[1])
	}
}

func TestProcessBatchOneIsolationPerDevice(t *testing.T) {
	h := newHarness(t, confirm.NewScripted(nil, nil))

	report, err := h.engine.ProcessBatch(context.Background(), hostHunt(
		models.Threat{Title: "a", Confidence: "critical", DeviceName: "ws-08"},
		models.Threat{Title: "b", Confidence: "critical", DeviceName: "ws-08"},
	))
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if report.Isolated != 1 || report.Skipped != 1 {
		t.Fatalf("report = %+v", report)
	}
	if len(h.exec.isolated) != 1 {
		t.Fatalf("device isolated more than once: %v", h.exec.isolated)
	}
}

func TestProcessBatchOversizedBatchRejected(t *testing.T) {
	h := newHarness(t, confirm.NewScripted(nil, nil))

	threats := make([]models.Threat, 51)
	for i := range threats {
		threats[i] = models.Threat{Title: "t", Confidence: "low", DeviceName: "ws"}
	}

	report, err := h.engine.ProcessBatch(context.Background(), hostHunt(threats...))
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if report.State != models.BatchAborted {
		t.Fatalf("State = %q, want aborted", report.State)
	}
	if len(h.store.Events()) != 0 {
		t.Fatalf("rejected batch must produce no events")
	}
}

func TestProcessBatchRateLimitAbortsRemainder(t *testing.T) {
	prompter := confirm.NewScripted(nil, []bool{true, true})
	h := newHarness(t, prompter)

	// Five recent successes exhaust the 5-minute window before the batch.
	for i := 0; i < 5; i++ {
		h.store.AppendEvent(context.Background(), &models.IsolationEvent{
			Timestamp:    time.Now().UTC(),
			Actor:        "agent",
			ActionResult: models.ResultSuccess,
		})
	}

	report, err := h.engine.ProcessBatch(context.Background(), hostHunt(
		models.Threat{Title: "a", Confidence: "high", DeviceName: "ws-09"},
		models.Threat{Title: "b", Confidence: "high", DeviceName: "ws-10"},
	))
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if !report.RateLimited {
		t.Fatalf("report should be flagged rate limited")
	}
	if len(prompter.IsolationPrompts) != 0 {
		t.Fatalf("no threat should be prompted after the denial, prompts = %v", prompter.IsolationPrompts)
	}
	if len(h.exec.isolated) != 0 {
		t.Fatalf("no isolation may happen after the denial")
	}
}

func TestProcessBatchLockedAgentRefuses(t *testing.T) {
	h := newHarness(t, confirm.NewScripted(nil, nil))
	h.locks.state = models.LockState{Locked: true, Reason: "manual", Timestamp: time.Now()}

	_, err := h.engine.ProcessBatch(context.Background(), hostHunt(
		models.Threat{Title: "a", Confidence: "critical", DeviceName: "ws-11"},
	))
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if len(h.exec.isolated) != 0 {
		t.Fatalf("locked agent must not isolate")
	}
}

func TestProcessBatchMassIsolationDeclined(t *testing.T) {
	prompter := confirm.NewScripted([]string{"no"}, nil)
	h := newHarness(t, prompter)

	threats := make([]models.Threat, 10)
	for i := range threats {
		threats[i] = models.Threat{Title: "worm", Confidence: "high", DeviceName: "ws"}
	}

	report, err := h.engine.ProcessBatch(context.Background(), hostHunt(threats...))
	if err != nil {
		t.Fatalf("declined mass isolation is not an error: %v", err)
	}
	if report.State != models.BatchAborted {
		t.Fatalf("State = %q, want aborted", report.State)
	}
	if len(h.exec.isolated) != 0 {
		t.Fatalf("declined mass isolation must isolate nothing")
	}

	records := h.store.Records()
	if len(records) != 1 {
		t.Fatalf("expected one decision record, got %d", len(records))
	}
	if records[0].ActionType != models.AuditUserDecision {
		t.Fatalf("record type = %q", records[0].ActionType)
	}
	if records[0].Details["decision"] != "declined" {
		t.Fatalf("decision = %q", records[0].Details["decision"])
	}
}

func TestProcessBatchMassIsolationApproved(t *testing.T) {
	prompter := confirm.NewScripted([]string{"CONFIRM MASS ISOLATION"}, nil)
	h := newHarness(t, prompter)

	// Three critical threats on distinct hosts keep the batch inside the
	// rate windows once the exception is approved; the high threats all
	// target an already-isolated host and are deduplicated.
	threats := []models.Threat{
		{Title: "w1", Confidence: "critical", DeviceName: "ws-a"},
		{Title: "w2", Confidence: "critical", DeviceName: "ws-b"},
		{Title: "w3", Confidence: "critical", DeviceName: "ws-c"},
	}
	for i := 0; i < 7; i++ {
		threats = append(threats, models.Threat{Title: "sig", Confidence: "high", DeviceName: "ws-a"})
	}

	report, err := h.engine.ProcessBatch(context.Background(), hostHunt(threats...))
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if !report.MassApproved {
		t.Fatalf("exception should be approved")
	}
	if report.Isolated != 3 {
		t.Fatalf("Isolated = %d, want 3", report.Isolated)
	}
	if len(prompter.MassPrompts) != 1 {
		t.Fatalf("mass prompt count = %d", len(prompter.MassPrompts))
	}

	records := h.store.Records()
	if len(records) != 1 || records[0].Details["decision"] != "approved" {
		t.Fatalf("records = %+v", records)
	}
}

func TestProcessBatchNonHostScopeTakesNoAction(t *testing.T) {
	h := newHarness(t, confirm.NewScripted(nil, nil))

	report, err := h.engine.ProcessBatch(context.Background(), &models.HuntResult{
		HuntID:              "hunt-2",
		Threats:             []models.Threat{{Title: "odd signin", Confidence: "critical", DeviceName: "ws-12"}},
		AboutIndividualUser: true,
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if report.State != models.BatchCompleted {
		t.Fatalf("State = %q", report.State)
	}
	if report.Skipped != 1 || len(h.exec.isolated) != 0 {
		t.Fatalf("non-host batches must take no isolation action: %+v", report)
	}
}

func TestProcessBatchRecordsHuntQueryTable(t *testing.T) {
	h := newHarness(t, confirm.NewScripted(nil, nil))

	hunt := hostHunt(models.Threat{Title: "beacon", Confidence: "critical", DeviceName: "ws-13"})
	hunt.TableName = "DeviceProcessEvents"

	if _, err := h.engine.ProcessBatch(context.Background(), hunt); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	records := h.store.Records()
	if len(records) != 1 {
		t.Fatalf("expected one hunt-query record, got %d", len(records))
	}
	if records[0].ActionType != models.AuditHuntQuery || !records[0].Success {
		t.Fatalf("record = %+v", records[0])
	}
	if records[0].Details["table"] != "DeviceProcessEvents" {
		t.Fatalf("table = %q", records[0].Details["table"])
	}
}

func TestProcessBatchRejectsDisallowedTable(t *testing.T) {
	h := newHarness(t, confirm.NewScripted(nil, nil))

	hunt := hostHunt(models.Threat{Title: "beacon", Confidence: "critical", DeviceName: "ws-14"})
	hunt.TableName = "SecretTable"

	report, err := h.engine.ProcessBatch(context.Background(), hunt)
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if report.State != models.BatchAborted {
		t.Fatalf("State = %q", report.State)
	}
	if len(h.exec.isolated) != 0 {
		t.Fatalf("rejected table must isolate nothing")
	}

	records := h.store.Records()
	if len(records) != 1 || records[0].Success {
		t.Fatalf("expected one failed hunt-query record, got %+v", records)
	}
}

func TestProcessBatchAssignsHuntID(t *testing.T) {
	h := newHarness(t, confirm.NewScripted(nil, nil))

	hunt := &models.HuntResult{AboutIndividualHost: true}
	report, err := h.engine.ProcessBatch(context.Background(), hunt)
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if report.HuntID == "" {
		t.Fatalf("report should carry a generated hunt id")
	}
}
