package main

import (
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// clearValue on the command line unassigns or clears a field.
const clearValue = "-"

func optional(value string) models.OptionalString {
	if value == clearValue {
		return models.Null()
	}
	return models.Some(value)
}

func (a *app) updateJob(cmd *cobra.Command, jobID string, updates *models.JobUpdates) error {
	ctx, cancel := a.requestContext(cmd.Context())
	defer cancel()

	row, err := a.api().UpdateJob(ctx, &models.JobUpdateRequest{JobID: jobID, Updates: updates})
	if err != nil {
		return err
	}
	renderJob(a.out, row)
	return nil
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status JOB_ID STATUS",
		Short: "Change a job's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := models.JobStatus(args[1])
			if !status.IsValid() {
				return fmt.Errorf("unknown status %q", args[1])
			}
			return a.updateJob(cmd, args[0], &models.JobUpdates{Status: &status})
		},
	}
}

func newAssignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assign JOB_ID TECHNICIAN_ID",
		Short: `Assign a technician to a job ("-" unassigns)`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.updateJob(cmd, args[0], &models.JobUpdates{AssignedTo: optional(args[1])})
		},
	}
}

func newAssignCrewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assign-crew JOB_ID CREW_ID",
		Short: `Assign a crew to a job ("-" unassigns)`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.updateJob(cmd, args[0], &models.JobUpdates{AssignedCrewID: optional(args[1])})
		},
	}
}

func newRescheduleCmd(a *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "reschedule JOB_ID DATE",
		Short: "Move a job to another date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := args[1]
			if !utils.IsValidDate(date) {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
			}
			updates := &models.JobUpdates{ScheduledDate: &date}
			if at != "" {
				if at != clearValue && !utils.IsValidTimeOfDay(at) {
					return fmt.Errorf("invalid time %q, expected HH:MM", at)
				}
				updates.ScheduledTime = optional(at)
			}
			return a.updateJob(cmd, args[0], updates)
		},
	}
	cmd.Flags().StringVar(&at, "time", "", `time of day HH:MM ("-" clears it)`)
	return cmd
}

func newMarkDispatchedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-dispatched [DATE]",
		Short: "Record that a day's board was sent to the field (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := utils.TodayIn(time.Now(), a.location())
			if len(args) == 1 {
				date = args[0]
			}
			if !utils.IsValidDate(date) {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
			}

			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()
			entry, err := a.api().MarkDispatched(ctx, date)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s dispatched at %s by %s\n", entry.LogDate, entry.DispatchedAt.Format(time.RFC3339), entry.DispatchedBy)
			return nil
		},
	}
}
