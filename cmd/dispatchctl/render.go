package main

import (
	"fieldfuze-dispatch/client"
	"fieldfuze-dispatch/models"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// renderBoard prints the board for the inclusive window of cursor.
func renderBoard(w io.Writer, cursor client.DateRangeCursor, board *models.DispatchResponse) {
	first, last := cursor.QueryBounds()
	fmt.Fprintf(w, "Dispatch board %s .. %s (%s)\n", first, last, cursor.Granularity())
	renderDispatchStatus(w, board.DispatchStatus)

	s := board.Stats
	fmt.Fprintf(w, "%d jobs: %d pending, %d unassigned, %d scheduled, %d in progress, %d completed, %d cancelled\n\n",
		s.Total, s.Pending, s.Unassigned, s.Scheduled, s.InProgress, s.Completed, s.Cancelled)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tSTATUS\tPRIORITY\tJOB\tTITLE\tTECHNICIAN\tCREW\tCUSTOMER")
	for _, job := range board.Jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			job.ScheduledDate,
			orDash(job.ScheduledTime),
			job.Status,
			job.Priority,
			job.ID,
			job.Title,
			orDash(job.TechnicianName),
			orDash(job.CrewName),
			orDash(job.CustomerName),
		)
	}
	tw.Flush()

	if len(board.Crews) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CREW\tLEAD\tMEMBERS\tTODAY\tDONE")
		for _, crew := range board.Crews {
			names := make([]string, 0, len(crew.Members))
			for _, m := range crew.Members {
				names = append(names, m.Name)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n",
				crew.Name, orDash(crew.LeadTechnicianName), strings.Join(names, ", "), crew.TodayJobCount, crew.CompletedCount)
		}
		tw.Flush()
	}
}

func renderDispatchStatus(w io.Writer, status models.DispatchStatus) {
	if !status.IsDispatched {
		fmt.Fprintln(w, "Not dispatched")
		return
	}
	line := "Dispatched"
	if status.DispatchedAt != nil {
		line += " at " + status.DispatchedAt.Format(time.RFC3339)
	}
	if status.DispatchedBy != nil {
		line += " by " + *status.DispatchedBy
	}
	if status.HasChangesAfterDispatch {
		line += " (changed since)"
	}
	fmt.Fprintln(w, line)
}

func renderJob(w io.Writer, job *models.DispatchJob) {
	fmt.Fprintf(w, "%s %s %s %s tech=%s crew=%s\n",
		job.ID, job.Status, job.ScheduledDate, orDash(job.ScheduledTime), orDash(job.TechnicianName), orDash(job.CrewName))
}
