// internal/workers/evaluation/generate-ai-feedback/handler_test.go
package generateaifeedback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/gemini"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/evaluation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) GenerateStructured(ctx context.Context, prompt string) (*gemini.StructuredFeedback, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gemini.StructuredFeedback), args.Error(1)
}

// ==========================
// Test Helper Functions
// ==========================

func formWithFailure(justification string) map[string]interface{} {
	return map[string]interface{}{
		"generalInfo": map[string]interface{}{"ticketNumber": "4521"},
		"checklistItems": map[string]interface{}{
			"item1": map[string]interface{}{"rating": "Conforme"},
			"item3": map[string]interface{}{"rating": "Não conforme", "justification": justification},
		},
	}
}

// ==========================
// Coaching Mode Tests
// ==========================

func TestHandler_Execute_CoachingCallsModel(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Não se apresentou")
	})).Return("Rafael, lembre-se de se apresentar.", nil)

	output, err := NewHandler(&Config{}, gen, logger.NewTestLogger(t)).
		Execute(context.Background(), &Input{FormData: formWithFailure("Não se apresentou")})

	require.NoError(t, err)
	assert.True(t, output.Generated)
	assert.Equal(t, ModeCoaching, output.Mode)
	assert.Equal(t, "Rafael, lembre-se de se apresentar.", output.Feedback)
	gen.AssertExpectations(t)
}

func TestHandler_Execute_NothingToImprove(t *testing.T) {
	gen := new(MockGenerator)

	output, err := NewHandler(&Config{}, gen, logger.NewTestLogger(t)).
		Execute(context.Background(), &Input{Mode: ModeCoaching, FormData: formWithFailure("")})

	require.NoError(t, err)
	assert.False(t, output.Generated)
	assert.Equal(t, evaluation.MsgNoImprovementPoints, output.Feedback)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestHandler_Execute_CoachingModelError(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", commonerrors.NewAITimeoutError())

	_, err := NewHandler(&Config{}, gen, logger.NewTestLogger(t)).
		Execute(context.Background(), &Input{FormData: formWithFailure("Demorou")})

	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeAITimeout))
}

// ==========================
// Structured Mode Tests
// ==========================

func TestHandler_Execute_StructuredWithGemini(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []interface{}{
				map[string]interface{}{"content": map[string]interface{}{
					"parts": []interface{}{map[string]interface{}{
						"text": "```json\n{\"1\": {\"pergunta\": \"Saudação\"}, \"avaliacao_ia\": \"Bom\", \"sugestao_ia\": \"Sorria\"}\n```",
					}},
				}},
			},
		})
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "k3y", "gemini-pro", 5*time.Second)
	output, err := NewHandler(&Config{}, client, logger.NewTestLogger(t)).
		Execute(context.Background(), &Input{Mode: ModeStructured, QuestionAnswerText: "1 - Saudação\nResposta: Conforme"})

	require.NoError(t, err)
	assert.Equal(t, "Bom", output.AvaliacaoIA)
	assert.Equal(t, "Sorria", output.SugestaoIA)
	assert.Contains(t, output.Answers, "1")
}

func TestHandler_Execute_StructuredFromForm(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateStructured", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Resposta: Não conforme") && strings.Contains(p, "avaliacao_ia")
	})).Return(&gemini.StructuredFeedback{AvaliacaoIA: "ok"}, nil)

	output, err := NewHandler(&Config{}, gen, logger.NewTestLogger(t)).
		Execute(context.Background(), &Input{Mode: ModeStructured, FormData: formWithFailure("x")})

	require.NoError(t, err)
	assert.Equal(t, "ok", output.AvaliacaoIA)
	gen.AssertExpectations(t)
}

func TestHandler_Execute_UnknownMode(t *testing.T) {
	_, err := NewHandler(&Config{}, new(MockGenerator), logger.NewTestLogger(t)).
		Execute(context.Background(), &Input{Mode: "poem"})

	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeInvalidInput))
}
