package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/shakilbd009/lead-finder/internal/model"
	"github.com/shakilbd009/lead-finder/internal/score"
)

func printList(w io.Writer, all []model.Lead) error {
	if len(all) == 0 {
		_, err := fmt.Fprintln(w, "no leads")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSCORE\tPOSITION\tCOMPANY\tTAGS")
	for _, l := range all {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			l.ID, l.Status, score.Calculate(l).Score, l.Position, l.Company, model.JoinList(l.Tags))
	}
	return tw.Flush()
}

func printLeads(w io.Writer, format string, all []model.Lead) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	case "yaml":
		return encodeYAML(w, all)
	case "text", "":
		for i, l := range all {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeLead(w, l)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeLead(w io.Writer, l model.Lead) {
	if l.Placeholder {
		fmt.Fprintln(w, "(demo data: the lead could not be loaded)")
	}
	res := score.Calculate(l)
	fmt.Fprintf(w, "%s at %s [%s]\n", l.Position, l.Company, l.ID)
	fmt.Fprintf(w, "  status:    %s\n", l.Status)
	fmt.Fprintf(w, "  score:     %d (%s)\n", res.Score, res.Label)
	fmt.Fprintf(w, "  location:  %s\n", l.Location)
	if l.Salary != "" {
		fmt.Fprintf(w, "  salary:    %s\n", l.Salary)
	}
	if l.URL != "" {
		fmt.Fprintf(w, "  url:       %s\n", l.URL)
	}
	if len(l.Tags) > 0 {
		fmt.Fprintf(w, "  tags:      %s\n", model.JoinList(l.Tags))
	}
	if l.FollowUpDate != nil {
		fmt.Fprintf(w, "  follow-up: %s\n", *l.FollowUpDate)
	}
	if l.ResponseReceived {
		fmt.Fprintf(w, "  response:  received %s\n", l.ResponseDate)
	}
	if l.Notes != "" {
		fmt.Fprintf(w, "  notes:     %s\n", strings.ReplaceAll(l.Notes, "\n", "\n             "))
	}
}

type scoreOutput struct {
	ID     string       `json:"id" yaml:"id"`
	Demo   bool         `json:"demo,omitempty" yaml:"demo,omitempty"`
	Result score.Result `json:"result" yaml:"result"`
}

func printScore(w io.Writer, format string, l model.Lead, res score.Result) error {
	out := scoreOutput{ID: l.ID, Demo: l.Placeholder, Result: res}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		return encodeYAML(w, out)
	case "text", "":
		fmt.Fprintf(w, "%s: %d (%s)\n", l.ID, res.Score, res.Label)
		for _, r := range res.Reasons {
			fmt.Fprintf(w, "  %+4d  %s\n", r.Points, r.Rule)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
