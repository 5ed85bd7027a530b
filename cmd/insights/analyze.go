package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vadim/social-insights/internal/domain/analytics/dao"
	"github.com/vadim/social-insights/internal/domain/analytics/engine"
	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

type analyzeOptions struct {
	postsFile      string
	postID         string
	margin         float64
	excludeSubject bool
	asJSON         bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one post against the other posts in a data set",
		Long: `Analyze loads a JSON array of posts, picks the subject by --post and
uses the whole array as the reference cohort. Without --posts the
built-in sample data set is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.postsFile, "posts", "", "JSON file with an array of posts (default: sample data)")
	cmd.Flags().StringVar(&opts.postID, "post", "", "ID of the post to analyze (default: first post)")
	cmd.Flags().Float64Var(&opts.margin, "margin", engine.DefaultMargin, "relative threshold for strengths and weaknesses")
	cmd.Flags().BoolVar(&opts.excludeSubject, "exclude-subject", false, "leave the analyzed post out of its own baselines")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the raw analysis as JSON")

	return cmd
}

func runAnalyze(w io.Writer, opts analyzeOptions) error {
	posts, err := loadPosts(opts.postsFile)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return fmt.Errorf("no posts to analyze")
	}

	subject := posts[0]
	if opts.postID != "" {
		found := false
		for _, p := range posts {
			if p.PostID == opts.postID {
				subject, found = p, true
				break
			}
		}
		if !found {
			return fmt.Errorf("post %q: %w", opts.postID, entity.ErrPostNotFound)
		}
	}

	eng := engine.New(engine.Config{Margin: opts.margin, ExcludeSubject: opts.excludeSubject})
	out, err := eng.Analyze(subject, posts)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", subject.PostID, err)
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	writeReport(w, subject.PostID, out)
	return nil
}

func loadPosts(path string) ([]entity.PostMetrics, error) {
	if path == "" {
		return dao.SamplePosts(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading posts: %w", err)
	}

	var posts []entity.PostMetrics
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, fmt.Errorf("decoding posts: %w", err)
	}
	return posts, nil
}

func writeReport(w io.Writer, postID string, out *entity.AnalysisOutput) {
	rule := strings.Repeat("=", 80)
	k := out.PostKPIs
	b := out.PlatformBaselines

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "POST ANALYSIS RESULTS")
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "\nKPIs for %s:\n", postID)
	fmt.Fprintf(w, "  - Engagement Rate: %.2f%%\n", k.EngagementRate)
	fmt.Fprintf(w, "  - Click-Through Rate: %.2f%%\n", k.ClickThroughRate)
	fmt.Fprintf(w, "  - Comment Rate: %.2f%%\n", k.CommentRate)
	fmt.Fprintf(w, "  - Share Rate: %.2f%%\n", k.ShareRate)
	fmt.Fprintf(w, "  - Save Rate: %.2f%%\n", k.SaveRate)

	fmt.Fprintln(w, "\nBenchmarks:")
	fmt.Fprintf(w, "  Platform Avg Engagement: %.2f%%\n", b.PlatformAvgEngagement)
	fmt.Fprintf(w, "  Cohort Avg Engagement: %.2f%%\n", b.CohortAvgEngagement)
	fmt.Fprintf(w, "  Platform Avg CTR: %.2f%%\n", b.PlatformAvgCTR)
	fmt.Fprintf(w, "  Cohort Avg CTR: %.2f%%\n", b.CohortAvgCTR)

	fmt.Fprintln(w, "\nStrengths:")
	for _, s := range out.Diagnostics.Strengths {
		fmt.Fprintf(w, "  - %s\n", s)
	}

	fmt.Fprintln(w, "\nWeaknesses:")
	for _, s := range out.Diagnostics.Weaknesses {
		fmt.Fprintf(w, "  - %s\n", s)
	}

	fmt.Fprintln(w, "\nRecommendations:")
	for _, r := range out.Recommendations {
		fmt.Fprintf(w, "  - [%s] %s\n", strings.ToUpper(string(r.Category)), r.Suggestion)
	}

	fmt.Fprintln(w, "\nExecutive Summary:")
	fmt.Fprintln(w, out.SummaryMD)
	fmt.Fprintln(w, rule)
}
