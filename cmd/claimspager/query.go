package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/povhealth/claimspager/query"
)

type queryFlags struct {
	providerID string
	dateStart  string
	dateEnd    string
	pageSize   int
	cursor     string
	before     string
	lastPage   bool
	count      bool
	strategy   string
}

func newQueryCmd(a *app) *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run one paginated claims query and print the page as JSON",
		Long: `Run one paginated claims query. With no cursor flags this fetches the
first page (with total and page count). --cursor resumes forward, --before
pages backward, --last fetches the final page via a reverse index scan.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			ctx := cmd.Context()
			requestID := uuid.NewString()

			req := query.PageRequest{
				ProviderID:   flags.providerID,
				DateStart:    flags.dateStart,
				DateEnd:      flags.dateEnd,
				PageSize:     flags.pageSize,
				LastPage:     flags.lastPage,
				IncludeCount: flags.count,
				Strategy:     query.Strategy(flags.strategy),
			}
			if flags.cursor != "" {
				c, err := query.DecodeCursor(flags.cursor)
				if err != nil {
					return err
				}
				req.Cursor = &c
			}
			if flags.before != "" {
				c, err := query.DecodeCursor(flags.before)
				if err != nil {
					return err
				}
				req.BeforeCursor = &c
			}

			d, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer d.Close(ctx)

			engine := query.NewEngine(d.Collection(),
				query.WithDefaultPageSize(a.cfg.Query.DefaultPageSize),
				query.WithLogger(a.log),
			)

			page, err := engine.Run(ctx, req)
			if err != nil {
				a.log.Error(ctx, "page query failed", "request_id", requestID, "error", err)
				return err
			}
			a.log.Info(ctx, "page query done", "request_id", requestID,
				"provider_id", flags.providerID, "documents", len(page.Documents))

			return printPage(cmd, page)
		},
	}

	cmd.Flags().StringVarP(&flags.providerID, "provider", "p", "", "billing provider id (required)")
	cmd.Flags().StringVar(&flags.dateStart, "date-start", "", "service date range start (YYYY-MM-DD, overlap semantics)")
	cmd.Flags().StringVar(&flags.dateEnd, "date-end", "", "service date range end (YYYY-MM-DD, overlap semantics)")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", 0, "page size (default from config)")
	cmd.Flags().StringVar(&flags.cursor, "cursor", "", "cursor from a previous page, fetches the next page")
	cmd.Flags().StringVar(&flags.before, "before", "", "cursor of the first record of the current page, fetches the previous page")
	cmd.Flags().BoolVar(&flags.lastPage, "last", false, "fetch the last page via reverse index scan")
	cmd.Flags().BoolVar(&flags.count, "count", false, "also run a count for total/numPages")
	cmd.Flags().StringVar(&flags.strategy, "strategy", string(query.StrategyCountAndFind),
		"first-page strategy: count_and_find or facet")
	_ = cmd.MarkFlagRequired("provider")

	return cmd
}

// pageOutput is the printed response shape; the cursor goes out in its
// encoded transport form.
type pageOutput struct {
	Total      *int64 `json:"total,omitempty"`
	PageSize   int    `json:"pageSize"`
	NumPages   *int64 `json:"numPages,omitempty"`
	Documents  any    `json:"documents"`
	NextCursor string `json:"nextCursor,omitempty"`
}

func printPage(cmd *cobra.Command, page *query.Page) error {
	out := pageOutput{
		Total:     page.Total,
		PageSize:  page.PageSize,
		NumPages:  page.NumPages,
		Documents: page.Documents,
	}
	if page.NextCursor != nil {
		out.NextCursor = page.NextCursor.Encode()
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
