package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyze_Report(t *testing.T) {
	out, err := execute(t, "analyze", "--post", "TW_002")
	require.NoError(t, err)

	assert.Contains(t, out, "KPIs for TW_002:")
	assert.Contains(t, out, "Engagement Rate: 9.73%")
	assert.Contains(t, out, "## Executive Summary")
}

func TestAnalyze_Margin(t *testing.T) {
	out, err := execute(t, "analyze", "--post", "TW_002", "--margin", "0.01")
	require.NoError(t, err)
	assert.Contains(t, out, "Engagement rate (9.73%) is above platform average")
}

func TestAnalyze_JSONFromFile(t *testing.T) {
	sample, err := execute(t, "sample")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	out, err := execute(t, "analyze", "--posts", path, "--post", "IG_001", "--json")
	require.NoError(t, err)

	var analysis entity.AnalysisOutput
	require.NoError(t, json.Unmarshal([]byte(out), &analysis))
	assert.InDelta(t, 9.18, analysis.PostKPIs.EngagementRate, 1e-9)
	assert.InDelta(t, 3.0, analysis.PostKPIs.ClickThroughRate, 1e-9)
	assert.NotEmpty(t, analysis.Recommendations)
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := execute(t, "analyze", "--post", "NOPE")
	assert.ErrorIs(t, err, entity.ErrPostNotFound)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"post_id": "X", "platform": "Instagram", "likes": -1}]`), 0o600))
	_, err = execute(t, "analyze", "--posts", path)
	assert.ErrorIs(t, err, entity.ErrInvalidMetrics)
}
