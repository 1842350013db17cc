package extraction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-consolidator/internal/llm"
	"github.com/jonathan/cv-consolidator/internal/llm/llmtest"
	"github.com/jonathan/cv-consolidator/internal/types"
)

const (
	identityJSON = `{"name": "Jane Doe", "email": "jane@acme.io", "phone": null, "address": "Berlin, Germany",
		"links": ["https://github.com/jane", ""], "tagline": "Backend engineer"}`
	summaryJSON = "```json\n" + `{"summary": "Backend engineer.", "certifications": [{"name": "CKA", "issuer": "CNCF"}],
		"languages": [{"name": "German", "proficiency": "Native"}], "projects": [], "achievements": ["Speaker at GopherCon"]}` + "\n```"
	eduSkillsJSON = `Here you go: {"education": [{"institution": "TU Berlin", "degree": "MSc", "field": "CS"}],
		"skills": ["golang", {"name": "Kubernetes", "category": "Cloud"}, "k8s", "postgres",]}`
)

var testChunks = []types.JobTextChunk{
	{Index: 0, Text: "Senior Engineer\nAcme Corp | 2020 - Present\n- Led team of 5 engineers"},
	{Index: 1, Text: "Engineer\nGlobex | 2016 - 2019\n- Managed a team of five engineers"},
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func roleResponses(input string) (string, error) {
	switch {
	case strings.Contains(input, "Acme"):
		return `{"title": "Senior Engineer", "company": "Acme Corp", "start_date": "2020", "end_date": "Present",
			"bullet_points": ["- Led team of 5 engineers"]}`, nil
	case strings.Contains(input, "Globex"):
		return `{"title": "Engineer", "company": "Globex", "start_date": "2016", "end_date": "2019",
			"bullet_points": ["Managed a team of five engineers"]}`, nil
	}
	return `{"title": null, "company": null, "bullet_points": []}`, nil
}

// happyClient answers every group with valid (if untidy) JSON
func happyClient() *llmtest.MockClient {
	return &llmtest.MockClient{
		GenerateStructuredFunc: func(_ context.Context, schema llm.ExtractionSchema, input string, _ llm.ModelTier) (string, error) {
			switch schema.Name {
			case "Identity":
				return identityJSON, nil
			case "Summary":
				return summaryJSON, nil
			case "EducationSkills":
				return eduSkillsJSON, nil
			default:
				return roleResponses(input)
			}
		},
	}
}

func newTestOrchestrator(client llm.Client) *Orchestrator {
	cfg := DefaultConfig()
	cfg.RequestTimeout = time.Second
	cfg.OverallTimeout = 5 * time.Second
	return NewOrchestrator(client, cfg, quietLogger())
}

func TestExtract_MergesAllGroups(t *testing.T) {
	result, err := newTestOrchestrator(happyClient()).Extract(context.Background(), "full cv text", testChunks)
	require.NoError(t, err)

	cv := result.CV
	assert.Equal(t, types.Known("Jane Doe"), cv.Identity.Name)
	assert.Equal(t, types.Known("jane@acme.io"), cv.Identity.Email)
	assert.False(t, cv.Identity.Phone.IsKnown())
	assert.Equal(t, []string{"https://github.com/jane"}, cv.Identity.Links)

	assert.Equal(t, "Backend engineer.", cv.Summary)
	assert.Equal(t, []types.Certification{{Name: "CKA", Issuer: "CNCF"}}, cv.Certifications)
	assert.Equal(t, []string{"Speaker at GopherCon"}, cv.Achievements)
	assert.NotNil(t, cv.Projects)

	require.Len(t, cv.Education, 1)
	assert.Equal(t, "TU Berlin", cv.Education[0].Institution)
	assert.Equal(t, []types.SkillEntry{
		{Name: "Go"},
		{Name: "Kubernetes", Category: "Cloud"},
		{Name: "PostgreSQL"},
	}, cv.Skills)

	require.Len(t, cv.Roles, 2)
	assert.Equal(t, "Acme Corp", cv.Roles[0].Company)
	assert.Equal(t, []string{"Led team of 5 engineers"}, cv.Roles[0].BulletPoints)
	assert.Equal(t, "Globex", cv.Roles[1].Company)

	assert.True(t, result.Report.OK())
	assert.Len(t, result.Report.Groups, 5)
	assert.Equal(t, types.OriginExtracted, cv.Origin)
}

func TestExtract_RolesKeepChunkOrder(t *testing.T) {
	client := happyClient()
	base := client.GenerateStructuredFunc
	client.GenerateStructuredFunc = func(ctx context.Context, schema llm.ExtractionSchema, input string, tier llm.ModelTier) (string, error) {
		// The first chunk finishes last
		if strings.Contains(input, "Acme") {
			time.Sleep(50 * time.Millisecond)
		}
		return base(ctx, schema, input, tier)
	}

	result, err := newTestOrchestrator(client).Extract(context.Background(), "cv", testChunks)
	require.NoError(t, err)

	require.Len(t, result.CV.Roles, 2)
	assert.Equal(t, "Acme Corp", result.CV.Roles[0].Company)
	assert.Equal(t, "Globex", result.CV.Roles[1].Company)
}

// One of three field-group responses is not JSON: that group gets its
// defaults and the other two are untouched.
func TestExtract_InvalidJSONDefaultsOnlyThatGroup(t *testing.T) {
	client := happyClient()
	base := client.GenerateStructuredFunc
	client.GenerateStructuredFunc = func(ctx context.Context, schema llm.ExtractionSchema, input string, tier llm.ModelTier) (string, error) {
		if schema.Name == "Summary" {
			return "I'm sorry, I cannot help with that.", nil
		}
		return base(ctx, schema, input, tier)
	}

	result, err := newTestOrchestrator(client).Extract(context.Background(), "cv", nil)
	require.NoError(t, err)

	cv := result.CV
	assert.Equal(t, "", cv.Summary)
	assert.NotNil(t, cv.Certifications)
	assert.Empty(t, cv.Certifications)
	assert.NotNil(t, cv.Achievements)

	assert.Equal(t, types.Known("Jane Doe"), cv.Identity.Name)
	assert.Len(t, cv.Education, 1)
	assert.Len(t, cv.Skills, 3)

	assert.Equal(t, 1, result.Report.Defaulted)
	var summaryReport GroupReport
	for _, g := range result.Report.Groups {
		if g.Group == GroupSummary {
			summaryReport = g
		}
	}
	assert.Equal(t, StatusDefaulted, summaryReport.Status)
	assert.Equal(t, ReasonParse, summaryReport.Reason)
}

func TestExtract_RoleWithoutTitleOrCompanyDiscarded(t *testing.T) {
	chunks := append([]types.JobTextChunk{}, testChunks...)
	chunks = append(chunks, types.JobTextChunk{Index: 2, Text: "References available on request from previous managers"})

	result, err := newTestOrchestrator(happyClient()).Extract(context.Background(), "cv", chunks)
	require.NoError(t, err)

	assert.Len(t, result.CV.Roles, 2)
	assert.Equal(t, 1, result.Report.DiscardedRoles)
	assert.True(t, result.Report.OK())
}

func TestExtract_SingleChunkHandledLikeMany(t *testing.T) {
	result, err := newTestOrchestrator(happyClient()).Extract(context.Background(), "cv", testChunks[:1])
	require.NoError(t, err)

	require.Len(t, result.CV.Roles, 1)
	assert.Equal(t, "Senior Engineer", result.CV.Roles[0].Title)
}

func TestExtract_RoleServiceErrorIsSoftFailure(t *testing.T) {
	client := happyClient()
	base := client.GenerateStructuredFunc
	client.GenerateStructuredFunc = func(ctx context.Context, schema llm.ExtractionSchema, input string, tier llm.ModelTier) (string, error) {
		if strings.Contains(input, "Globex") {
			return "", &llm.ServiceError{Kind: llm.KindUnavailable, Message: "503"}
		}
		return base(ctx, schema, input, tier)
	}

	result, err := newTestOrchestrator(client).Extract(context.Background(), "cv", testChunks)
	require.NoError(t, err)

	require.Len(t, result.CV.Roles, 1)
	assert.Equal(t, "Acme Corp", result.CV.Roles[0].Company)
	assert.Equal(t, 1, result.Report.Defaulted)
	assert.Equal(t, 1, result.Report.DiscardedRoles)
}

func TestExtract_AllCallsUnavailable(t *testing.T) {
	var calls atomic.Int32
	client := &llmtest.MockClient{
		GenerateStructuredFunc: func(context.Context, llm.ExtractionSchema, string, llm.ModelTier) (string, error) {
			calls.Add(1)
			return "", &llm.ServiceError{Kind: llm.KindAuth, Message: "API key not valid"}
		},
	}

	result, err := newTestOrchestrator(client).Extract(context.Background(), "cv", testChunks)

	assert.Nil(t, result)
	var unavailable *ServiceUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 5, unavailable.Calls)
	assert.Equal(t, int32(5), calls.Load())
}

func TestExtract_AllCallsUnparsableStillReturnsCV(t *testing.T) {
	client := &llmtest.MockClient{
		GenerateStructuredFunc: func(context.Context, llm.ExtractionSchema, string, llm.ModelTier) (string, error) {
			return "not json at all", nil
		},
	}

	result, err := newTestOrchestrator(client).Extract(context.Background(), "cv", testChunks)
	require.NoError(t, err)

	cv := result.CV
	assert.False(t, cv.Identity.Name.IsKnown())
	assert.NotNil(t, cv.Roles)
	assert.Empty(t, cv.Roles)
	assert.NotNil(t, cv.Skills)
	assert.Equal(t, 5, result.Report.Defaulted)
}

func TestExtract_RequestTimeoutDefaultsGroup(t *testing.T) {
	client := happyClient()
	base := client.GenerateStructuredFunc
	client.GenerateStructuredFunc = func(ctx context.Context, schema llm.ExtractionSchema, input string, tier llm.ModelTier) (string, error) {
		if schema.Name == "Identity" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return base(ctx, schema, input, tier)
	}

	cfg := DefaultConfig()
	cfg.RequestTimeout = 20 * time.Millisecond
	result, err := NewOrchestrator(client, cfg, quietLogger()).Extract(context.Background(), "cv", testChunks)
	require.NoError(t, err)

	assert.False(t, result.CV.Identity.Name.IsKnown())
	assert.Len(t, result.CV.Roles, 2)
	assert.Equal(t, ReasonTimeout, result.Report.Groups[0].Reason)
}

func TestExtract_OverallTimeoutKeepsCompletedGroups(t *testing.T) {
	client := happyClient()
	base := client.GenerateStructuredFunc
	client.GenerateStructuredFunc = func(ctx context.Context, schema llm.ExtractionSchema, input string, tier llm.ModelTier) (string, error) {
		if schema.Name == "Role" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return base(ctx, schema, input, tier)
	}

	cfg := DefaultConfig()
	cfg.RequestTimeout = time.Minute
	cfg.OverallTimeout = 30 * time.Millisecond
	result, err := NewOrchestrator(client, cfg, quietLogger()).Extract(context.Background(), "cv", testChunks)
	require.NoError(t, err)

	assert.Equal(t, types.Known("Jane Doe"), result.CV.Identity.Name)
	assert.Empty(t, result.CV.Roles)
	assert.Equal(t, 2, result.Report.Defaulted)
}

func TestExtract_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &llmtest.MockClient{
		GenerateStructuredFunc: func(ctx context.Context, _ llm.ExtractionSchema, _ string, _ llm.ModelTier) (string, error) {
			cancel()
			<-ctx.Done()
			return "", ctx.Err()
		},
	}

	result, err := newTestOrchestrator(client).Extract(ctx, "cv", testChunks)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_UsesConfiguredTiersAndVerbatimPrompts(t *testing.T) {
	var roleTier, identityTier atomic.Value
	client := &llmtest.MockClient{
		GenerateStructuredFunc: func(_ context.Context, schema llm.ExtractionSchema, input string, tier llm.ModelTier) (string, error) {
			switch schema.Name {
			case "Role":
				roleTier.Store(tier)
				if !strings.Contains(schema.Description, "(entry 1)") {
					return "", errors.New("role prompt missing entry number")
				}
				return roleResponses(input)
			case "Identity":
				identityTier.Store(tier)
			}
			if !strings.Contains(schema.Description, "VERBATIM") {
				return "", errors.New("prompt missing verbatim instruction")
			}
			return `{}`, nil
		},
	}

	result, err := newTestOrchestrator(client).Extract(context.Background(), "cv", testChunks[:1])
	require.NoError(t, err)

	assert.True(t, result.Report.OK())
	assert.Equal(t, llm.TierStandard, roleTier.Load())
	assert.Equal(t, llm.TierLite, identityTier.Load())
}
