package kyc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/domain"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

var allStates = []domain.KYCState{
	domain.KYCStatePending,
	domain.KYCStateInProgress,
	domain.KYCStateEDDRequired,
	domain.KYCStateCompleted,
	domain.KYCStateRejected,
}

func TestCanTransition_AllowedPairs(t *testing.T) {
	allowed := map[[2]domain.KYCState]bool{
		{domain.KYCStatePending, domain.KYCStateInProgress}:     true,
		{domain.KYCStateInProgress, domain.KYCStateEDDRequired}: true,
		{domain.KYCStateInProgress, domain.KYCStateCompleted}:   true,
		{domain.KYCStateInProgress, domain.KYCStateRejected}:    true,
		{domain.KYCStateEDDRequired, domain.KYCStateCompleted}:  true,
		{domain.KYCStateEDDRequired, domain.KYCStateRejected}:   true,
	}

	for _, from := range allStates {
		for _, to := range allStates {
			ok, reason := CanTransition(from, to)
			if allowed[[2]domain.KYCState{from, to}] {
				assert.True(t, ok, "%s -> %s should be allowed", from, to)
				assert.Empty(t, reason)
			} else {
				assert.False(t, ok, "%s -> %s should be rejected", from, to)
				assert.NotEmpty(t, reason, "%s -> %s needs a rejection reason", from, to)
			}
		}
	}
}

func TestApply_InProgressRequiresADocument(t *testing.T) {
	status := domain.KYCStatus{CurrentState: domain.KYCStatePending}

	err := Apply(&status, TransitionRequest{TargetState: domain.KYCStateInProgress}, time.Now())
	require.Error(t, err)

	var pre *PreconditionError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, PreconditionDocumentsRequired, pre.Code)
	assert.Equal(t, domain.KYCStatePending, status.CurrentState, "status must be untouched on failure")
}

func TestApply_InProgressWithOneDocument(t *testing.T) {
	status := domain.KYCStatus{CurrentState: domain.KYCStatePending}

	err := Apply(&status, TransitionRequest{
		TargetState: domain.KYCStateInProgress,
		HasNRC:      boolPtr(true),
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, domain.KYCStateInProgress, status.CurrentState)
	assert.True(t, status.HasNRC)
}

func TestApply_CompletionDocumentCombinations(t *testing.T) {
	tests := []struct {
		name            string
		nrc, poa        bool
		payslip, letter bool
		aml             bool
		wantCode        string
	}{
		{"all docs payslip route", true, true, true, false, true, ""},
		{"all docs employment letter route", true, true, false, true, true, ""},
		{"missing NRC", false, true, true, false, true, PreconditionDocumentsIncomplete},
		{"missing proof of address", true, false, true, false, true, PreconditionDocumentsIncomplete},
		{"neither income document", true, true, false, false, true, PreconditionDocumentsIncomplete},
		{"AML screening pending", true, true, true, false, false, PreconditionAMLIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := domain.KYCStatus{
				CurrentState:         domain.KYCStateInProgress,
				HasNRC:               tt.nrc,
				HasProofOfAddress:    tt.poa,
				HasPayslip:           tt.payslip,
				HasEmploymentLetter:  tt.letter,
				AMLScreeningComplete: tt.aml,
			}

			err := Apply(&status, TransitionRequest{TargetState: domain.KYCStateCompleted}, time.Now())
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, domain.KYCStateCompleted, status.CurrentState)
				return
			}

			var pre *PreconditionError
			require.ErrorAs(t, err, &pre)
			assert.Equal(t, tt.wantCode, pre.Code)
			assert.Equal(t, domain.KYCStateInProgress, status.CurrentState)
		})
	}
}

func TestApply_PreconditionsEvaluateMergedState(t *testing.T) {
	// The stored record has no documents, the request supplies them all:
	// the transition must pass because preconditions see the merged record.
	status := domain.KYCStatus{CurrentState: domain.KYCStateInProgress}

	err := Apply(&status, TransitionRequest{
		TargetState:          domain.KYCStateCompleted,
		HasNRC:               boolPtr(true),
		HasProofOfAddress:    boolPtr(true),
		HasPayslip:           boolPtr(true),
		AMLScreeningComplete: boolPtr(true),
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStateCompleted, status.CurrentState)
}

func TestApply_EscalationRequiresReason(t *testing.T) {
	status := domain.KYCStatus{CurrentState: domain.KYCStateInProgress, HasNRC: true}

	err := Apply(&status, TransitionRequest{
		TargetState: domain.KYCStateEDDRequired,
		EDDReason:   strPtr("   "),
	}, time.Now())

	var pre *PreconditionError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, PreconditionEDDReasonRequired, pre.Code)
}

func TestApply_EscalationStampsRecord(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	status := domain.KYCStatus{CurrentState: domain.KYCStateInProgress, HasNRC: true}

	err := Apply(&status, TransitionRequest{
		TargetState: domain.KYCStateEDDRequired,
		EDDReason:   strPtr("PEP match on screening"),
	}, now)
	require.NoError(t, err)

	assert.True(t, status.RequiresEDD)
	assert.Equal(t, "PEP match on screening", status.EDDReason)
	require.NotNil(t, status.EscalatedAt)
	assert.Equal(t, now, *status.EscalatedAt)
}

func TestApply_CompletionStampsActorAndTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	status := completableStatus()

	err := Apply(&status, TransitionRequest{
		TargetState: domain.KYCStateCompleted,
		Actor:       "officer@lender.example",
	}, now)
	require.NoError(t, err)

	require.NotNil(t, status.CompletedAt)
	assert.Equal(t, now, *status.CompletedAt)
	require.NotNil(t, status.CompletedBy)
	assert.Equal(t, "officer@lender.example", *status.CompletedBy)
	assert.Equal(t, now, status.UpdatedAt)
}

func TestApply_ApprovalTimestampNeedsBothSignatures(t *testing.T) {
	now := time.Now().UTC()

	// Only the compliance signature present: no approval timestamp.
	status := completableStatus()
	err := Apply(&status, TransitionRequest{
		TargetState:          domain.KYCStateCompleted,
		ComplianceApprovedBy: strPtr("compliance@lender.example"),
	}, now)
	require.NoError(t, err)
	assert.Nil(t, status.ApprovedAt)

	// Compliance signature already stored, executive arrives with the
	// transition: both present, so the timestamp is stamped.
	status = completableStatus()
	status.ComplianceApprovedBy = strPtr("compliance@lender.example")
	err = Apply(&status, TransitionRequest{
		TargetState:         domain.KYCStateCompleted,
		ExecutiveApprovedBy: strPtr("exec@lender.example"),
	}, now)
	require.NoError(t, err)
	require.NotNil(t, status.ApprovedAt)
	assert.Equal(t, now, *status.ApprovedAt)
}

func TestApply_RejectionFromEscalation(t *testing.T) {
	status := domain.KYCStatus{
		CurrentState: domain.KYCStateEDDRequired,
		HasNRC:       true,
		RequiresEDD:  true,
		EDDReason:    "sanctions list proximity",
	}

	err := Apply(&status, TransitionRequest{TargetState: domain.KYCStateRejected}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStateRejected, status.CurrentState)
	assert.Nil(t, status.CompletedAt)
}

func TestApply_TerminalStatesRejectEverything(t *testing.T) {
	for _, from := range []domain.KYCState{domain.KYCStateCompleted, domain.KYCStateRejected} {
		for _, to := range allStates {
			status := domain.KYCStatus{CurrentState: from}
			err := Apply(&status, TransitionRequest{TargetState: to}, time.Now())

			var inv *InvalidTransitionError
			require.ErrorAs(t, err, &inv, "%s -> %s", from, to)
			assert.Equal(t, from, inv.From)
			assert.Equal(t, to, inv.To)
		}
	}
}

func completableStatus() domain.KYCStatus {
	return domain.KYCStatus{
		CurrentState:         domain.KYCStateInProgress,
		HasNRC:               true,
		HasProofOfAddress:    true,
		HasPayslip:           true,
		AMLScreeningComplete: true,
	}
}
