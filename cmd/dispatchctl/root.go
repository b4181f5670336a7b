package main

import (
	"context"
	"fieldfuze-dispatch/client"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils"
	"fieldfuze-dispatch/utils/logger"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const requestTimeout = 30 * time.Second

type apiFactory func(baseURL, token string) client.DispatchAPI

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	out    io.Writer
	newAPI apiFactory

	config *models.Config
	logger logger.Logger

	apiURL   string
	token    string
	logLevel string
}

func newRootCmd(out io.Writer, newAPI apiFactory) *cobra.Command {
	return (&app{out: out, newAPI: newAPI}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dispatchctl",
		Short:        "Inspect and edit the dispatch board",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", "", "dispatch API base URL (default from config)")
	flags.StringVar(&a.token, "token", "", "bearer token (default from config)")
	flags.StringVar(&a.logLevel, "log-level", "warn", "client log level")

	root.AddCommand(
		newBoardCmd(a),
		newWatchCmd(a),
		newStatusCmd(a),
		newAssignCmd(a),
		newAssignCrewCmd(a),
		newRescheduleCmd(a),
		newMarkDispatchedCmd(a),
		newTokenCmd(a),
	)
	return root
}

func (a *app) init() error {
	if a.config == nil {
		cfg, err := utils.GetConfig()
		if err != nil {
			return err
		}
		a.config = cfg
	}
	if a.apiURL == "" {
		a.apiURL = a.config.DispatchAPIURL
	}
	if a.token == "" {
		a.token = a.config.DispatchAPIToken
	}
	if a.logger == nil {
		a.logger = logger.NewLoggerWithOutput(a.logLevel, "text", os.Stderr)
	}
	return nil
}

func (a *app) api() client.DispatchAPI {
	return a.newAPI(a.apiURL, a.token)
}

func (a *app) location() *time.Location {
	return utils.LoadLocation(a.config.Timezone)
}

func (a *app) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, requestTimeout)
}

// boardFlags are the date window and filters shared by board and watch.
type boardFlags struct {
	date        string
	view        string
	technicians []string
	crews       []string
	statuses    []string
	search      string
}

func (f *boardFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "reference date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.view, "view", string(client.GranularityDay), "window: day, 3day or week")
	cmd.Flags().StringSliceVar(&f.technicians, "tech", nil, "technician ids to include")
	cmd.Flags().StringSliceVar(&f.crews, "crew", nil, "crew ids to include")
	cmd.Flags().StringSliceVar(&f.statuses, "status", nil, "statuses to include")
	cmd.Flags().StringVarP(&f.search, "query", "q", "", "free-text search")
}

func (f *boardFlags) cursor(now time.Time, loc *time.Location) (client.DateRangeCursor, error) {
	g := client.Granularity(f.view)
	if f.date == "" {
		return client.TodayCursor(now, loc, g)
	}
	return client.NewDateRangeCursor(f.date, g)
}

func (f *boardFlags) query(c client.DateRangeCursor) (models.DispatchQuery, error) {
	start, end := c.QueryBounds()
	q := models.DispatchQuery{
		StartDate:     start,
		EndDate:       end,
		TechnicianIDs: f.technicians,
		CrewIDs:       f.crews,
		Search:        f.search,
	}
	for _, s := range f.statuses {
		status := models.JobStatus(s)
		if !status.IsValid() {
			return q, fmt.Errorf("unknown status %q", s)
		}
		q.Statuses = append(q.Statuses, status)
	}
	return q, nil
}
