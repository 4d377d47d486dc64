package worktime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/timeclerk/worktime-engine/worktime"
	"github.com/timeclerk/worktime-engine/worktime/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// newTestService wires a service over a fresh memory store with a fixed clock.
func newTestService(now time.Time) (*worktime.Service, *store.Memory) {
	mem := store.NewMemory()
	svc := worktime.NewService(mem)
	svc.SetClock(fixedClock(now))
	return svc, mem
}

// blockingStore gates GetContract so a recompute pass can be held mid-flight
// while a second pass races for the same contract's lock.
type blockingStore struct {
	*store.Memory
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) GetContract(ctx context.Context, id worktime.ContractID) (worktime.Contract, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.Memory.GetContract(ctx, id)
}

// =============================================================================
// FORWARD RECOMPUTE
// =============================================================================

func TestRecompute_ShiftChangeUpdatesAllLaterMonths(t *testing.T) {
	// GIVEN: A contract created in April with an empty ledger Jan..Apr
	// WHEN: A reviewed February shift arrives
	// THEN: January is untouched, February through April all carry the
	//       shift's net forward

	ctx := context.Background()
	now := time.Date(2025, time.April, 15, 12, 0, 0, 0, time.UTC)
	svc, mem := newTestService(now)

	contract, err := svc.CreateContract(ctx, testContract())
	if err != nil {
		t.Fatalf("creating contract: %v", err)
	}

	// 8h continuous on Feb 3: net 450 after the 30min break.
	sh := shiftAt(day(2025, time.February, 3), 9, 0, 17, 0)
	sh.ID = ""
	sh.ContractID = contract.ID
	if _, err := svc.CreateShift(ctx, sh); err != nil {
		t.Fatalf("creating shift: %v", err)
	}

	want := map[worktime.Month]worktime.Minutes{
		worktime.NewMonth(2025, time.January):  0,
		worktime.NewMonth(2025, time.February): 450,
		worktime.NewMonth(2025, time.March):    450,
		worktime.NewMonth(2025, time.April):    450,
	}
	for month, balance := range want {
		r, err := mem.GetReport(ctx, contract.ID, month)
		if err != nil {
			t.Fatalf("loading %v: %v", month, err)
		}
		if r.Worktime != balance {
			t.Errorf("%v balance = %d, want %d", month, r.Worktime, balance)
		}
	}
}

func TestRecompute_EarlierMonthsUntouched(t *testing.T) {
	// GIVEN: Reviewed shifts in February and March
	// WHEN: The March shift is deleted
	// THEN: January and February balances are byte-identical to before;
	//       March and April drop the deleted net

	ctx := context.Background()
	now := time.Date(2025, time.April, 15, 12, 0, 0, 0, time.UTC)
	svc, mem := newTestService(now)

	contract, err := svc.CreateContract(ctx, testContract())
	if err != nil {
		t.Fatalf("creating contract: %v", err)
	}

	feb := shiftAt(day(2025, time.February, 3), 9, 0, 17, 0)
	feb.ID = ""
	feb.ContractID = contract.ID
	if _, err := svc.CreateShift(ctx, feb); err != nil {
		t.Fatalf("creating february shift: %v", err)
	}

	mar := shiftAt(day(2025, time.March, 3), 8, 0, 12, 0)
	mar.ID = ""
	mar.ContractID = contract.ID
	created, err := svc.CreateShift(ctx, mar)
	if err != nil {
		t.Fatalf("creating march shift: %v", err)
	}

	febBefore, _ := mem.GetReport(ctx, contract.ID, worktime.NewMonth(2025, time.February))

	if err := svc.DeleteShift(ctx, created.ID); err != nil {
		t.Fatalf("deleting march shift: %v", err)
	}

	febAfter, _ := mem.GetReport(ctx, contract.ID, worktime.NewMonth(2025, time.February))
	if febAfter.Worktime != febBefore.Worktime {
		t.Errorf("february changed: %d -> %d", febBefore.Worktime, febAfter.Worktime)
	}

	marAfter, _ := mem.GetReport(ctx, contract.ID, worktime.NewMonth(2025, time.March))
	if marAfter.Worktime != 450 {
		t.Errorf("march balance = %d, want 450 (february net only)", marAfter.Worktime)
	}
	aprAfter, _ := mem.GetReport(ctx, contract.ID, worktime.NewMonth(2025, time.April))
	if aprAfter.Worktime != 450 {
		t.Errorf("april balance = %d, want 450", aprAfter.Worktime)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	// GIVEN: A recomputed chain
	// WHEN: Recomputing again with unchanged inputs
	// THEN: Every stored balance is identical

	ctx := context.Background()
	now := time.Date(2025, time.April, 15, 12, 0, 0, 0, time.UTC)
	svc, mem := newTestService(now)

	contract, err := svc.CreateContract(ctx, testContract())
	if err != nil {
		t.Fatalf("creating contract: %v", err)
	}
	sh := shiftAt(day(2025, time.February, 3), 9, 0, 17, 0)
	sh.ID = ""
	sh.ContractID = contract.ID
	if _, err := svc.CreateShift(ctx, sh); err != nil {
		t.Fatalf("creating shift: %v", err)
	}

	before, _ := mem.ReportsFrom(ctx, contract.ID, contract.StartMonth())

	if err := svc.Orchestrator().Recompute(ctx, contract.ID, contract.StartMonth()); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	after, _ := mem.ReportsFrom(ctx, contract.ID, contract.StartMonth())
	if len(before) != len(after) {
		t.Fatalf("report count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Worktime != after[i].Worktime {
			t.Errorf("%v drifted: %d -> %d", before[i].Month, before[i].Worktime, after[i].Worktime)
		}
	}
}

func TestRecompute_GapInLedgerFails(t *testing.T) {
	// GIVEN: A ledger missing February between January and March
	// WHEN: Recomputing from March
	// THEN: The pass fails loudly instead of skipping the gap

	ctx := context.Background()
	mem := store.NewMemory()
	contract := testContract()
	_ = mem.CreateContract(ctx, contract)
	seedReport(t, mem, contract, worktime.NewMonth(2025, time.January), 0)
	seedReport(t, mem, contract, worktime.NewMonth(2025, time.March), 0)

	orch := worktime.NewOrchestrator(mem)
	orch.Now = fixedClock(time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC))

	err := orch.Recompute(ctx, contract.ID, worktime.NewMonth(2025, time.March))
	if !errors.Is(err, worktime.ErrMissingReport) {
		t.Fatalf("expected ErrMissingReport, got %v", err)
	}
}

func TestRecompute_ContendedContractLock(t *testing.T) {
	// GIVEN: A recompute pass held mid-flight for a contract
	// WHEN: A second pass races for the same contract
	// THEN: It fails fast with a retryable concurrent-mutation error

	ctx := context.Background()
	mem := store.NewMemory()
	contract := testContract()
	_ = mem.CreateContract(ctx, contract)
	seedReport(t, mem, contract, worktime.NewMonth(2025, time.January), 0)

	gated := &blockingStore{
		Memory:  mem,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	orch := worktime.NewOrchestrator(mem)
	orch.Contracts = gated
	orch.Now = fixedClock(time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC))

	done := make(chan error, 1)
	go func() {
		done <- orch.Recompute(ctx, contract.ID, contract.StartMonth())
	}()

	<-gated.entered // first pass holds the lock, parked in the store

	err := orch.Recompute(ctx, contract.ID, contract.StartMonth())
	if !errors.Is(err, worktime.ErrConcurrentMutation) {
		t.Errorf("expected ErrConcurrentMutation, got %v", err)
	}
	if !worktime.IsRetryable(err) {
		t.Errorf("concurrent mutation should be retryable")
	}

	close(gated.release)
	if err := <-done; err != nil {
		t.Fatalf("held pass failed: %v", err)
	}
}

// =============================================================================
// MONTH ROLLOVER
// =============================================================================

func TestOnMonthRollover_ExtendsEveryActiveContract(t *testing.T) {
	// GIVEN: Two active contracts and one already ended
	// WHEN: The rollover fires on May 1st
	// THEN: Both active contracts gain a May report, the ended one does not

	ctx := context.Background()
	now := time.Date(2025, time.April, 20, 12, 0, 0, 0, time.UTC)
	svc, mem := newTestService(now)

	a, err := svc.CreateContract(ctx, testContract())
	if err != nil {
		t.Fatalf("creating contract a: %v", err)
	}

	b := testContract()
	b.ID = ""
	b.UserID = "u-2"
	b.Name = "second"
	b, err = svc.CreateContract(ctx, b)
	if err != nil {
		t.Fatalf("creating contract b: %v", err)
	}

	ended := testContract()
	ended.ID = ""
	ended.UserID = "u-3"
	ended.Name = "ended"
	ended.EndDate = time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC)
	ended, err = svc.CreateContract(ctx, ended)
	if err != nil {
		t.Fatalf("creating ended contract: %v", err)
	}

	rollover := time.Date(2025, time.May, 1, 0, 10, 0, 0, time.UTC)
	svc.SetClock(fixedClock(rollover))
	if err := svc.RolloverMonth(ctx, rollover); err != nil {
		t.Fatalf("rollover: %v", err)
	}

	may := worktime.NewMonth(2025, time.May)
	for _, id := range []worktime.ContractID{a.ID, b.ID} {
		if _, err := mem.GetReport(ctx, id, may); err != nil {
			t.Errorf("contract %s has no may report: %v", id, err)
		}
	}
	if _, err := mem.GetReport(ctx, ended.ID, may); !errors.Is(err, worktime.ErrReportNotFound) {
		t.Errorf("ended contract should have no may report, got err=%v", err)
	}
}
