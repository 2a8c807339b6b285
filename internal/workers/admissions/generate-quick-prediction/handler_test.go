package generatequickprediction

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"medadmit-workers/internal/admissions"
	"medadmit-workers/internal/common/camunda/camundatest"
	"medadmit-workers/internal/common/config"
	"medadmit-workers/internal/common/errors"
	"medadmit-workers/internal/common/logger"
	"medadmit-workers/internal/engine"
	"medadmit-workers/internal/reference"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	activatedJob := &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "admission-prediction",
		ElementId:          "Activity_GenerateQuickPrediction",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}

	return entities.Job{ActivatedJob: activatedJob}
}

func createTestService(t *testing.T) *admissions.Service {
	t.Helper()
	provider, err := reference.LoadEmbedded()
	require.NoError(t, err)

	return admissions.NewService(admissions.ServiceDependencies{
		Engine:   engine.New(provider, nil, engine.DefaultPolicy()),
		Provider: provider,
		Logger:   logger.NewTestLogger(t),
	})
}

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Service:      createTestService(t),
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func validApplicant() map[string]interface{} {
	return map[string]interface{}{
		"cumulativeGPA":      3.72,
		"scienceGPA":         3.65,
		"mcatTotal":          514.0,
		"stateOfResidence":   " tx ",
		"raceEthnicity":      "Hispanic",
		"isFirstGeneration":  true,
		"clinicalHoursTotal": 900.0,
	}
}

// ==========================
// Handler Creation Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr string
	}{
		{
			name: "valid configuration",
			opts: HandlerOptions{CustomConfig: DefaultConfig(), Service: createTestService(t)},
		},
		{
			name:    "zero timeout",
			opts:    HandlerOptions{CustomConfig: &Config{Enabled: true, MaxJobsActive: 1}, Service: createTestService(t)},
			wantErr: "timeout must be positive",
		},
		{
			name:    "zero max jobs",
			opts:    HandlerOptions{CustomConfig: &Config{Enabled: true, Timeout: time.Second}, Service: createTestService(t)},
			wantErr: "max_jobs_active must be positive",
		},
		{
			name:    "missing service",
			opts:    HandlerOptions{CustomConfig: DefaultConfig()},
			wantErr: "admissions service is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHandler(tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, h)
		})
	}
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	cfg := createConfigFromAppConfig(nil)
	assert.Equal(t, DefaultConfig(), cfg)

	app := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: false, MaxJobsActive: 3, Timeout: 2500},
	}}
	cfg = createConfigFromAppConfig(app)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 3, cfg.MaxJobsActive)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	h := createTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{Applicant: validApplicant()})
	require.NoError(t, err)

	q := output.QuickPrediction
	assert.NotEmpty(t, q.Tier)
	assert.GreaterOrEqual(t, q.GlobalProbability, 0.0)
	assert.LessOrEqual(t, q.GlobalProbability, 1.0)
	assert.Greater(t, q.ExpectedAcceptances, 0.0)
	assert.Equal(t, engine.DefaultPolicy().QuickTier(q.Score), q.Tier)
}

func TestHandler_Execute_StrongerApplicantScoresHigher(t *testing.T) {
	h := createTestHandler(t)

	weak := validApplicant()
	weak["cumulativeGPA"] = 3.2
	weak["mcatTotal"] = 498.0

	strong := validApplicant()
	strong["cumulativeGPA"] = 3.95
	strong["mcatTotal"] = 521.0
	strong["researchHoursTotal"] = 1500.0

	w, err := h.Execute(context.Background(), &Input{Applicant: weak})
	require.NoError(t, err)
	s, err := h.Execute(context.Background(), &Input{Applicant: strong})
	require.NoError(t, err)

	assert.Greater(t, s.QuickPrediction.Score, w.QuickPrediction.Score)
	assert.Greater(t, s.QuickPrediction.GlobalProbability, w.QuickPrediction.GlobalProbability)
	assert.Greater(t, s.QuickPrediction.ExpectedAcceptances, w.QuickPrediction.ExpectedAcceptances)
}

func TestHandler_Execute_ValidationFailed(t *testing.T) {
	h := createTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{Applicant: map[string]interface{}{
		"cumulativeGPA":    3.5,
		"mcatTotal":        515.0,
		"stateOfResidence": "CA",
		"raceEthnicity":    "unknown",
	}})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
}

// ==========================
// Job Lifecycle Tests
// ==========================

func TestHandler_Handle_CompletesJob(t *testing.T) {
	h := createTestHandler(t)
	client := camundatest.NewJobClient()

	h.Handle(client, createMockJob(11, map[string]interface{}{"applicant": validApplicant()}))

	completed := client.Gateway.Completed()
	require.Len(t, completed, 1)
	assert.Equal(t, int64(11), completed[0].JobKey)
	assert.Contains(t, completed[0].Variables, `"quickPrediction"`)
	assert.Empty(t, client.Gateway.Failed())
	assert.Empty(t, client.Gateway.Thrown())
}

func TestHandler_Handle_CompleteSendFailure(t *testing.T) {
	h := createTestHandler(t)
	client := camundatest.NewJobClient()
	client.Gateway.CompleteErr = assert.AnError

	h.Handle(client, createMockJob(12, map[string]interface{}{"applicant": validApplicant()}))

	require.Len(t, client.Gateway.Completed(), 1)
	failed := client.Gateway.Failed()
	require.Len(t, failed, 1, "rejected completion must fail the job")
	assert.Equal(t, int64(12), failed[0].JobKey)
	assert.Equal(t, int32(2), failed[0].Retries)
	assert.Contains(t, failed[0].Variables, string(errors.ErrCodeExternalService))
	assert.Empty(t, client.Gateway.Thrown())
}
