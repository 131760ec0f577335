package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/bootstrap"
	"github.com/fadilmartias/cv-screener/internal/config"
	"github.com/fadilmartias/cv-screener/internal/export"
	"github.com/fadilmartias/cv-screener/internal/logger"
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/fadilmartias/cv-screener/internal/repository"
	"github.com/fadilmartias/cv-screener/internal/service"
	"github.com/fadilmartias/cv-screener/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	rosterFile string
	dbPath     string
	threshold  float64
	verbose    bool
}

func newRootCommand() *cobra.Command {
	campaignConfig := config.LoadCampaignConfig()
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "outreach",
		Short: "Screen résumés and run candidate outreach campaigns",
		Long: `outreach extracts skills from a résumé and scores it against a position,
and mails the candidates of a roster whose match is above the threshold.
Send status is kept in a local SQLite file, so re-running a campaign never
mails the same candidate twice.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.rosterFile, "roster", "r", campaignConfig.RosterFile, "Roster file (YAML or JSON)")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", campaignConfig.SQLitePath, "SQLite file holding send status")
	cmd.PersistentFlags().Float64Var(&opts.threshold, "threshold", campaignConfig.MatchThreshold, "Only candidates with a match above this are contacted")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")

	cmd.AddCommand(
		newScreenCmd(opts),
		newStatusCmd(opts),
		newSendCmd(opts),
		newSendAllCmd(opts),
		newResetCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

func (o *options) logger() (*zap.Logger, error) {
	appConfig := *config.LoadAppConfig()
	switch {
	case o.verbose:
		appConfig.LogLevel = "debug"
	case appConfig.LogLevel == "":
		appConfig.LogLevel = "warn"
	}
	return logger.New(&appConfig)
}

// printer renders controller events as one line each.
func printer(w io.Writer) usecase.Observer {
	return func(e usecase.Event) {
		fmt.Fprintf(w, "[%s] %s\n", e.Level, e.Message)
	}
}

type campaignSession struct {
	campaign *usecase.Campaign
	close    func()
}

func (o *options) openCampaign(cmd *cobra.Command) (*campaignSession, error) {
	if o.rosterFile == "" {
		return nil, errors.New("no roster: pass --roster or set ROSTER_FILE")
	}
	log, err := o.logger()
	if err != nil {
		return nil, err
	}

	campaignConfig := *config.LoadCampaignConfig()
	campaignConfig.RosterFile = o.rosterFile
	roster, err := bootstrap.LoadRoster(cmd.Context(), &campaignConfig, nil)
	if err != nil {
		return nil, err
	}

	store, err := repository.NewSQLiteStore(o.dbPath)
	if err != nil {
		return nil, err
	}

	campaign := usecase.NewCampaign(store, service.NewMailService(config.LoadScreenerConfig()), usecase.CampaignOptions{
		Key:            campaignConfig.Key,
		MatchThreshold: o.threshold,
	}, log, printer(cmd.ErrOrStderr()))
	campaign.Initialize(cmd.Context(), roster)

	return &campaignSession{
		campaign: campaign,
		close: func() {
			store.Close()
			_ = log.Sync()
		},
	}, nil
}

func newScreenCmd(opts *options) *cobra.Command {
	var position string
	cmd := &cobra.Command{
		Use:   "screen <resume.pdf>",
		Short: "Extract skills from a résumé and optionally score it against a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := opts.logger()
			if err != nil {
				return err
			}
			defer log.Sync()

			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			screenerConfig := config.LoadScreenerConfig()
			screener := service.NewScreenerService(screenerConfig)
			extractor, err := bootstrap.NewExtractor(screenerConfig, screener)
			if err != nil {
				return err
			}
			analyzer, err := bootstrap.NewAnalyzer(cmd.Context(), screenerConfig, config.LoadGeminiConfig(), screener, log)
			if err != nil {
				return err
			}

			pipeline := usecase.NewUploadPipeline(extractor, analyzer, log, printer(cmd.ErrOrStderr()))
			doc := model.Document{
				Name:      filepath.Base(args[0]),
				MediaType: http.DetectContentType(content),
				Content:   content,
			}
			if err := pipeline.SelectDocument(cmd.Context(), doc); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			snap := pipeline.Snapshot()
			fmt.Fprintf(out, "Skills (%d): %s\n", len(snap.Skills), strings.Join(snap.Skills, ", "))
			if position == "" {
				return nil
			}

			pipeline.SetTargetPosition(position)
			outcome, err := pipeline.Analyze(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Match:          %.1f%%\n", outcome.MatchPercentage)
			fmt.Fprintf(out, "Suitability:    %s\n", outcome.Suitability)
			fmt.Fprintf(out, "Recommendation: %s\n", outcome.Recommendation)
			if outcome.Rationale != "" {
				fmt.Fprintf(out, "\n%s\n", outcome.Rationale)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&position, "position", "p", "", "Target position to score against")
	return cmd
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List qualifying candidates and whether they have been mailed",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openCampaign(cmd)
			if err != nil {
				return err
			}
			defer session.close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tROLE\tMATCH\tSTATUS")
			for _, v := range session.campaign.Candidates() {
				fmt.Fprintf(tw, "%s\t%s\t%.0f%%\t%s\n", v.Name, v.Role, v.Match, v.Status)
			}
			return tw.Flush()
		},
	}
}

func newSendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "send <name>",
		Short: "Mail a single candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openCampaign(cmd)
			if err != nil {
				return err
			}
			defer session.close()

			candidate, ok := session.campaign.Candidate(args[0])
			if !ok {
				return apperror.NewValidationError(apperror.ReasonUnknownCandidate,
					fmt.Sprintf("%q is not a qualifying candidate", args[0]))
			}
			return session.campaign.SendOne(cmd.Context(), candidate)
		},
	}
}

func newSendAllCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "send-all",
		Short: "Mail every qualifying candidate not yet mailed",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openCampaign(cmd)
			if err != nil {
				return err
			}
			defer session.close()

			confirmation := session.campaign.RequestConfirmation()
			if !yes {
				fmt.Fprintln(cmd.OutOrStdout(), confirmation.Message)
				fmt.Fprintln(cmd.OutOrStdout(), "Re-run with --yes to send.")
				return nil
			}

			summary, err := session.campaign.SendAll(cmd.Context(), true)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d sent, %d failed, %d skipped (run %s)\n",
				summary.Sent, summary.Failed, summary.Skipped, summary.RunID)
			if summary.Failed > 0 {
				return fmt.Errorf("%d candidate(s) could not be mailed", summary.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm sending to all pending candidates")
	return cmd
}

func newResetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget which candidates have been mailed",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openCampaign(cmd)
			if err != nil {
				return err
			}
			defer session.close()

			session.campaign.ResetStatus(cmd.Context())
			return nil
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the campaign status to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openCampaign(cmd)
			if err != nil {
				return err
			}
			defer session.close()

			path, err := export.SaveCampaignReport(output, session.campaign.Candidates(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "campaign.xlsx", "Output file")
	return cmd
}
