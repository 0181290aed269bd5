package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"
)

type stubScorer struct {
	calls []int
	err   error
}

func (s *stubScorer) RecomputeScore(companyID int) error {
	s.calls = append(s.calls, companyID)
	return s.err
}

var (
	evidenceLoadPattern  = regexp.MustCompile("SELECT \\* FROM `evidence` WHERE evidence_id = \\?")
	companyReqLoad       = regexp.MustCompile("SELECT \\* FROM `company_requests` WHERE request_id = \\?")
	tenureReqLoad        = regexp.MustCompile("SELECT \\* FROM `leader_tenure_requests` WHERE request_id = \\?")
	evidenceUpdate       = regexp.MustCompile(`UPDATE evidence SET status = \?, moderator_id = \?, decision_reason = \?, moderated_at = \? WHERE evidence_id = \? AND status = \?`)
	actionInsertPattern  = regexp.MustCompile("INSERT INTO `moderation_actions`")
	emailLookupPattern   = regexp.MustCompile("SELECT user_id, email FROM `users` WHERE user_id = \\? AND delete_at IS NULL")
	jobInsertPattern     = regexp.MustCompile("INSERT INTO `notification_jobs`")
	evidenceColumns      = []string{"evidence_id", "company_id", "title", "status", "submitted_by", "assigned_moderator_id"}
	companyReqColumns    = []string{"request_id", "name", "status", "submitted_by", "assigned_moderator_id", "leader_name", "leader_role"}
	tenureReqColumns     = []string{"request_id", "company_id", "change_type", "leader_name", "role_title", "status", "submitted_by", "assigned_moderator_id"}
)

func pendingEvidenceRow() []driver.Value {
	return []driver.Value{int64(42), int64(7), "Illegal dumping records", "pending", int64(1), int64(2)}
}

func TestDecideRejectEvidenceWritesAuditAndNotification(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: evidenceLoadPattern,
			columns: evidenceColumns,
			rows:    [][]driver.Value{pendingEvidenceRow()},
		},
		{
			kind:    kindExec,
			pattern: evidenceUpdate,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: actionInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: emailLookupPattern,
			columns: []string{"user_id", "email"},
			rows:    [][]driver.Value{{int64(1), "submitter@example.com"}},
		},
		{
			kind:    kindExec,
			pattern: jobInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	scorer := &stubScorer{}
	err := NewDecisionService(db, scorer).Decide(2, ItemRef{Kind: KindEvidence, ID: 42}, "reject", "insufficient proof")
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if len(scorer.calls) != 0 {
		t.Fatalf("scoring must not run on rejection, got calls %v", scorer.calls)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecideApproveEvidenceTriggersScoreRecompute(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: evidenceLoadPattern,
			columns: evidenceColumns,
			rows:    [][]driver.Value{pendingEvidenceRow()},
		},
		{
			kind:    kindExec,
			pattern: evidenceUpdate,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: actionInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			// Submitter account is gone; notification is skipped, not fatal.
			kind:    kindQuery,
			pattern: emailLookupPattern,
			columns: []string{"user_id", "email"},
			rows:    [][]driver.Value{},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	scorer := &stubScorer{}
	err := NewDecisionService(db, scorer).Decide(2, ItemRef{Kind: KindEvidence, ID: 42}, "approve", "")
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if len(scorer.calls) != 1 || scorer.calls[0] != 7 {
		t.Fatalf("expected score recompute for company 7, got %v", scorer.calls)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecideScoreRecomputeFailureDoesNotFailDecision(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: evidenceLoadPattern,
			columns: evidenceColumns,
			rows:    [][]driver.Value{pendingEvidenceRow()},
		},
		{
			kind:    kindExec,
			pattern: evidenceUpdate,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: actionInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: emailLookupPattern,
			columns: []string{"user_id", "email"},
			rows:    [][]driver.Value{},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	scorer := &stubScorer{err: errors.New("scoring service down")}
	err := NewDecisionService(db, scorer).Decide(2, ItemRef{Kind: KindEvidence, ID: 42}, "approve", "")
	if err != nil {
		t.Fatalf("decision must not fail on scoring errors, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecidePreconditions(t *testing.T) {
	base := func(status string, submittedBy, assignedTo driver.Value) []driver.Value {
		return []driver.Value{int64(42), int64(7), "Illegal dumping records", status, submittedBy, assignedTo}
	}

	cases := []struct {
		name    string
		row     [][]driver.Value
		action  string
		note    string
		wantErr error
	}{
		{
			name:    "not found",
			row:     [][]driver.Value{},
			action:  "approve",
			wantErr: ErrItemNotFound,
		},
		{
			name:    "already processed",
			row:     [][]driver.Value{base("approved", int64(1), int64(2))},
			action:  "approve",
			wantErr: ErrAlreadyProcessed,
		},
		{
			name:    "assigned to someone else",
			row:     [][]driver.Value{base("pending", int64(1), int64(3))},
			action:  "approve",
			wantErr: ErrNotAssigned,
		},
		{
			name:    "unassigned",
			row:     [][]driver.Value{base("pending", int64(1), nil)},
			action:  "approve",
			wantErr: ErrNotAssigned,
		},
		{
			name:    "self review",
			row:     [][]driver.Value{base("pending", int64(2), int64(2))},
			action:  "approve",
			wantErr: ErrSelfReview,
		},
		{
			name:    "reject without note",
			row:     [][]driver.Value{base("pending", int64(1), int64(2))},
			action:  "reject",
			note:    "   ",
			wantErr: ErrNoteRequired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			steps := []*queryStep{
				{
					kind:    kindQuery,
					pattern: evidenceLoadPattern,
					columns: evidenceColumns,
					rows:    tc.row,
				},
			}
			db, state, cleanup := newScriptedGormDB(t, steps)
			defer cleanup()

			err := NewDecisionService(db, &stubScorer{}).Decide(2, ItemRef{Kind: KindEvidence, ID: 42}, tc.action, tc.note)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}

			if err := state.verifyComplete(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestDecideInvalidActionFailsBeforeAnyQuery(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	err := NewDecisionService(db, &stubScorer{}).Decide(2, ItemRef{Kind: KindEvidence, ID: 42}, "escalate", "")
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecideDuplicateDecisionIsAlreadyProcessed(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: evidenceLoadPattern,
			columns: evidenceColumns,
			rows:    [][]driver.Value{pendingEvidenceRow()},
		},
		{
			// A concurrent duplicate won the conditional update.
			kind:    kindExec,
			pattern: evidenceUpdate,
			result:  scriptedResult{rowsAffected: 0},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	err := NewDecisionService(db, &stubScorer{}).Decide(2, ItemRef{Kind: KindEvidence, ID: 42}, "approve", "")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecideApproveCompanyRequestMaterializesCompanyAndTenure(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: companyReqLoad,
			columns: companyReqColumns,
			rows: [][]driver.Value{{
				int64(9), "Acme Corp", "pending", int64(1), int64(2), "Jane Roe", "CEO",
			}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile(`UPDATE company_requests SET status = \?, moderator_id = \?`),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: actionInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT count\\(\\*\\) FROM `companies` WHERE slug = \\?"),
			args:    []driver.Value{"acme-corp"},
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(0)}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `companies`"),
			result:  scriptedResult{lastInsertID: 11, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile(`UPDATE company_requests SET created_company_id = \? WHERE request_id = \?`),
			args:    []driver.Value{int64(11), int64(9)},
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `leaders` WHERE slug = \\?"),
			columns: []string{"leader_id", "name", "slug"},
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `leaders`"),
			result:  scriptedResult{lastInsertID: 5, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT count\\(\\*\\) FROM `leader_tenures` WHERE company_id = \\? AND role_title = \\? AND end_date IS NULL"),
			args:    []driver.Value{int64(11), "CEO"},
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(0)}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `leader_tenures`"),
			result:  scriptedResult{lastInsertID: 3, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: emailLookupPattern,
			columns: []string{"user_id", "email"},
			rows:    [][]driver.Value{{int64(1), "submitter@example.com"}},
		},
		{
			kind:    kindExec,
			pattern: jobInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	err := NewDecisionService(db, &stubScorer{}).Decide(2, ItemRef{Kind: KindCompanyRequest, ID: 9}, "approve", "looks legit")
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecideApproveTenureAddRejectsOverlap(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: tenureReqLoad,
			columns: tenureReqColumns,
			rows: [][]driver.Value{{
				int64(4), int64(11), "add", "Jane Roe", "CEO", "pending", int64(1), int64(2),
			}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile(`UPDATE leader_tenure_requests SET status = \?`),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: actionInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `leaders` WHERE slug = \\?"),
			columns: []string{"leader_id", "name", "slug"},
			rows:    [][]driver.Value{{int64(5), "Jane Roe", "jane-roe"}},
		},
		{
			// Same company already has an open CEO tenure.
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT count\\(\\*\\) FROM `leader_tenures`"),
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(1)}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	err := NewDecisionService(db, &stubScorer{}).Decide(2, ItemRef{Kind: KindLeaderTenureRequest, ID: 4}, "approve", "")
	if !errors.Is(err, ErrTenureOverlap) {
		t.Fatalf("expected ErrTenureOverlap, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecideApproveTenureEndClosesOpenTenure(t *testing.T) {
	endDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: tenureReqLoad,
			columns: append(tenureReqColumns, "tenure_id", "end_date"),
			rows: [][]driver.Value{{
				int64(6), int64(11), "end", "Jane Roe", "CEO", "pending", int64(1), int64(2), int64(3), endDate,
			}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile(`UPDATE leader_tenure_requests SET status = \?`),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: actionInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile(`UPDATE leader_tenures SET end_date = \? WHERE tenure_id = \? AND end_date IS NULL`),
			args:    []driver.Value{endDate, int64(3)},
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: emailLookupPattern,
			columns: []string{"user_id", "email"},
			rows:    [][]driver.Value{},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	err := NewDecisionService(db, &stubScorer{}).Decide(2, ItemRef{Kind: KindLeaderTenureRequest, ID: 6}, "approve", "")
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecideApproveTenureEndAlreadyEnded(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: tenureReqLoad,
			columns: append(tenureReqColumns, "tenure_id"),
			rows: [][]driver.Value{{
				int64(6), int64(11), "end", "Jane Roe", "CEO", "pending", int64(1), int64(2), int64(3),
			}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile(`UPDATE leader_tenure_requests SET status = \?`),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: actionInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile(`UPDATE leader_tenures SET end_date = \?`),
			result:  scriptedResult{rowsAffected: 0},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	err := NewDecisionService(db, &stubScorer{}).Decide(2, ItemRef{Kind: KindLeaderTenureRequest, ID: 6}, "approve", "")
	if !errors.Is(err, ErrTenureAlreadyEnded) {
		t.Fatalf("expected ErrTenureAlreadyEnded, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
