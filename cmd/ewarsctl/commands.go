package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/csdewars/ewars/internal/domain/geojoin"
	"github.com/csdewars/ewars/internal/domain/hierarchy"
	"github.com/csdewars/ewars/internal/domain/metrics"
	"github.com/csdewars/ewars/internal/domain/riskmap"
	"github.com/csdewars/ewars/internal/domain/selection"
	"github.com/csdewars/ewars/internal/domain/surveillance"
	"github.com/csdewars/ewars/internal/infra/config"
	"github.com/csdewars/ewars/internal/infra/export"
	"github.com/csdewars/ewars/internal/infra/geodata"
	"github.com/csdewars/ewars/internal/infra/history"
	"github.com/csdewars/ewars/internal/infra/objectstore"
	"github.com/csdewars/ewars/internal/infra/snapshotcache"
	"github.com/csdewars/ewars/internal/infra/upstream/lmis"
	"github.com/csdewars/ewars/internal/infra/upstream/survey"
)

// selectionFlags narrows the initial full selection.
type selectionFlags struct {
	levels        map[hierarchy.Level]*[]string
	organizations []string
	diseases      []string
	from, to      string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	f.levels = make(map[hierarchy.Level]*[]string, len(hierarchy.SurveyLevels))
	for _, level := range hierarchy.SurveyLevels {
		names := new([]string)
		f.levels[level] = names
		cmd.Flags().StringSliceVar(names, string(level), nil, fmt.Sprintf("Restrict the %s selection", level))
	}
	cmd.Flags().StringSliceVar(&f.organizations, "organization", nil, "Restrict organizations")
	cmd.Flags().StringSliceVar(&f.diseases, "disease", nil, "Restrict suspected diseases")
	cmd.Flags().StringVar(&f.from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day (YYYY-MM-DD)")
}

// apply reduces the flags over the initial state, top level first so the
// cascade narrows lower levels before they are set explicitly.
func (f *selectionFlags) apply(cmd *cobra.Command, svc surveillance.Service, state selection.State) (selection.State, error) {
	ctx := cmd.Context()
	actions := make([]selection.Action, 0, len(hierarchy.SurveyLevels)+3)
	for _, level := range hierarchy.SurveyLevels {
		if names := *f.levels[level]; len(names) > 0 {
			actions = append(actions, selection.SetLevel(level, names...))
		}
	}
	if len(f.organizations) > 0 {
		actions = append(actions, selection.Action{Kind: selection.KindSetOrganizations, Names: f.organizations})
	}
	if len(f.diseases) > 0 {
		actions = append(actions, selection.Action{Kind: selection.KindSetDiseases, Names: f.diseases})
	}
	if f.from != "" || f.to != "" {
		r := state.DateRange
		if f.from != "" {
			r.Start = f.from
		}
		if f.to != "" {
			r.End = f.to
		}
		actions = append(actions, selection.Action{Kind: selection.KindSetDateRange, DateRange: r})
	}
	for _, action := range actions {
		// Facets are reset only when the geography changes.
		policy := selection.PolicyFullCascade
		if action.Kind == selection.KindSetLevel {
			policy = selection.PolicyCascadeResetFacets
		}
		res, err := svc.ApplyAction(ctx, surveillance.ActionRequest{State: state, Action: action, Policy: policy})
		if err != nil {
			return state, err
		}
		state = res.State
	}
	return state, nil
}

func newSurveillance(path string) surveillance.Service {
	return surveillance.NewService(
		surveillance.Config{},
		survey.FileSource{Path: path},
		snapshotcache.NewMemoryCache(),
		export.NewXLSXWriter(),
		newLogger(),
	)
}

func newHierarchyCmd() *cobra.Command {
	var (
		submissions string
		boundaries  string
	)
	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Print the location hierarchy of a submissions or boundary file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case submissions != "":
				view, err := newSurveillance(submissions).Hierarchy(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), view)
			case boundaries != "":
				svc := riskmap.NewService(riskmap.Config{}, geodata.NewFileSource(boundaries), nil, nil, history.NewMemoryRepository(), newLogger())
				view, err := svc.Hierarchy(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), view)
			default:
				return fmt.Errorf("one of --submissions or --boundaries is required")
			}
		},
	}
	cmd.Flags().StringVar(&submissions, "submissions", "", "Saved survey response (JSON)")
	cmd.Flags().StringVar(&boundaries, "boundaries", "", "Upazila FeatureCollection (GeoJSON)")
	return cmd
}

func newMetricsCmd() *cobra.Command {
	var (
		submissions string
		sel         selectionFlags
	)
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Compute dashboard metrics for a selection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := newSurveillance(submissions)
			view, err := svc.Hierarchy(cmd.Context())
			if err != nil {
				return err
			}
			state, err := sel.apply(cmd, svc, view.Initial)
			if err != nil {
				return err
			}
			dashboard, err := svc.Dashboard(cmd.Context(), state)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Total    int            `json:"total"`
				Filtered int            `json:"filtered"`
				Metrics  metrics.Bundle `json:"metrics"`
			}{dashboard.Total, dashboard.Filtered, dashboard.Metrics})
		},
	}
	cmd.Flags().StringVar(&submissions, "submissions", "", "Saved survey response (JSON)")
	_ = cmd.MarkFlagRequired("submissions")
	sel.register(cmd)
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var (
		boundaries string
		records    string
		actuals    string
		req        riskmap.ClassifyRequest
		full       bool
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify upazilas by forecast or reported cases for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var actualSource riskmap.ActualSource
			switch {
			case actuals != "":
				req.View = riskmap.ViewActual
				actualSource = lmis.FileSource{Path: actuals, Logger: newLogger()}
			case records != "":
				req.View = riskmap.ViewForecast
				payload, err := os.ReadFile(records)
				if err != nil {
					return fmt.Errorf("read forecasts: %w", err)
				}
				if err := json.Unmarshal(payload, &req.Records); err != nil {
					return fmt.Errorf("decode forecasts: %w", err)
				}
			default:
				return fmt.Errorf("one of --forecasts or --actuals is required")
			}
			svc := riskmap.NewService(riskmap.Config{DefaultThreshold: 100}, geodata.NewFileSource(boundaries), actualSource, nil, history.NewMemoryRepository(), newLogger())
			result, err := svc.Classify(cmd.Context(), req)
			if err != nil {
				return err
			}
			if full {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				View       string               `json:"view"`
				Month      string               `json:"month"`
				Scale      string               `json:"scale"`
				TierCounts map[geojoin.Tier]int `json:"tierCounts"`
				Markers    []geojoin.Marker     `json:"markers"`
			}{result.View, result.Month, result.Scale, result.TierCounts, result.Markers})
		},
	}
	cmd.Flags().StringVar(&boundaries, "boundaries", geodata.DefaultObjectKey, "Upazila FeatureCollection (GeoJSON)")
	cmd.Flags().StringVar(&records, "forecasts", "", "Forecast records (JSON array of {upa_name, forecast_month, pred_cases})")
	cmd.Flags().StringVar(&actuals, "actuals", "", "LMIS rows (JSON array)")
	cmd.Flags().StringVar(&req.Month, "month", "", "Month key (YYYY-MM)")
	cmd.Flags().StringVar(&req.Scale, "scale", "threshold", "Scale: threshold or bins")
	cmd.Flags().Float64Var(&req.Threshold, "threshold", 0, "Risk threshold (default 100)")
	cmd.Flags().StringSliceVar(&req.Divisions, "division", nil, "Restrict divisions")
	cmd.Flags().StringSliceVar(&req.Districts, "district", nil, "Restrict districts")
	cmd.Flags().StringSliceVar(&req.Upazilas, "upazila", nil, "Restrict upazilas")
	cmd.Flags().BoolVar(&full, "geojson", false, "Print the classified FeatureCollection")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		submissions string
		out         string
		upload      string
		sel         selectionFlags
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered submissions to an XLSX workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := newSurveillance(submissions)
			view, err := svc.Hierarchy(cmd.Context())
			if err != nil {
				return err
			}
			state, err := sel.apply(cmd, svc, view.Initial)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			n, err := svc.Export(cmd.Context(), state, &buf)
			if err != nil {
				return err
			}
			if out != "" {
				if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				cmd.Printf("wrote %d records to %s\n", n, out)
			}
			if upload != "" {
				store, err := openObjectStore()
				if err != nil {
					return err
				}
				obj, err := store.Put(cmd.Context(), upload, buf.Bytes(), svc.ExportContentType())
				if err != nil {
					return fmt.Errorf("upload %s: %w", upload, err)
				}
				cmd.Printf("uploaded %d records to %s (%d bytes)\n", n, obj.Key, obj.Size)
			}
			if out == "" && upload == "" {
				return fmt.Errorf("one of --out or --upload is required")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&submissions, "submissions", "", "Saved survey response (JSON)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output workbook path")
	cmd.Flags().StringVar(&upload, "upload", "", "Object key to upload the workbook to")
	_ = cmd.MarkFlagRequired("submissions")
	sel.register(cmd)
	return cmd
}

// openObjectStore uses the service configuration: the S3 bucket when an
// endpoint is set, otherwise the local object directory.
func openObjectStore() (objectstore.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	oc := cfg.ObjectStore
	if oc.Endpoint != "" {
		return objectstore.NewMinioStore(objectstore.MinioConfig{
			Endpoint:  oc.Endpoint,
			AccessKey: oc.AccessKey,
			SecretKey: oc.SecretKey,
			Bucket:    oc.Bucket,
			Region:    oc.Region,
		}, newLogger())
	}
	return objectstore.NewDirStore(filepath.Clean(oc.Dir))
}
