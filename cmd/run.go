package main

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var (
	runSICCodes     []string
	runPhone        string
	runLocation     string
	runYearEndMonth int
	runYearEndStart string
	runYearEndEnd   string
)

// buildCriteria assembles search criteria from the run flags. An explicit
// date range takes precedence over a bare month.
func buildCriteria() model.Criteria {
	criteria := model.Criteria{
		SICCodes: runSICCodes,
		Location: runLocation,
		Phone:    runPhone,
	}
	switch {
	case runYearEndStart != "" || runYearEndEnd != "":
		criteria.YearEndMode = model.YearEndModeRange
		criteria.YearEndStart = runYearEndStart
		criteria.YearEndEnd = runYearEndEnd
	case runYearEndMonth != 0:
		criteria.YearEndMode = model.YearEndModeMonth
		criteria.YearEndMonth = runYearEndMonth
	}
	return criteria
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single lead-generation search to completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg, emails, notif, err := initClients()
		if err != nil {
			return err
		}

		criteria := buildCriteria()

		st := store.NewMemoryStore()
		task := &model.Task{
			ID:       uuid.NewString(),
			Status:   model.TaskStatusPending,
			Criteria: criteria,
			Phone:    criteria.Phone,
		}
		if err := st.Create(task); err != nil {
			return eris.Wrap(err, "create task")
		}

		p := pipeline.New(cfg, st, reg, emails, notif)
		p.Run(ctx, task.ID)

		result, ok := st.Get(task.ID)
		if !ok {
			return eris.New("task disappeared from store")
		}

		zap.L().Info("search complete",
			zap.String("status", string(result.Status)),
			zap.Int("leads", len(result.Results)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runSICCodes, "sic", nil, "SIC codes to search (required)")
	runCmd.Flags().StringVar(&runPhone, "phone", "", "phone number for the SMS notification")
	runCmd.Flags().StringVar(&runLocation, "location", "", "registered-address filter")
	runCmd.Flags().IntVar(&runYearEndMonth, "year-end-month", 0, "financial year-end month (1-12)")
	runCmd.Flags().StringVar(&runYearEndStart, "year-end-start", "", "financial year-end range start (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runYearEndEnd, "year-end-end", "", "financial year-end range end (YYYY-MM-DD)")
	_ = runCmd.MarkFlagRequired("sic")
	rootCmd.AddCommand(runCmd)
}
