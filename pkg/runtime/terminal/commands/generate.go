package commands

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/de-tools/research-reports/pkg/runtime/terminal/export"
	"github.com/de-tools/research-reports/pkg/services/report"
	"github.com/spf13/cobra"
)

// Session is an open connection able to build reports
type Session interface {
	ResolvePrincipal(ctx context.Context, userID string, rootRequested bool) (domain.Principal, error)
	Dispatch(ctx context.Context, token string, principal domain.Principal, raw url.Values) (any, error)
	Close(ctx context.Context) error
}

// Connector opens a Session using the configuration file at configPath
type Connector func(ctx context.Context, configPath string, registry report.Registry) (Session, error)

type GenerateCmd struct {
	configPath string
	params     []string
	userID     string
	root       bool
	format     string
	timeout    time.Duration
	registry   report.Registry
	connect    Connector
	reporter   *export.Reporter
}

func NewGenerateCmd(registry report.Registry, connect Connector, reporter *export.Reporter) *cobra.Command {
	gc := &GenerateCmd{registry: registry, connect: connect, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "generate <type>",
		Short: "Generate a report",
		Args:  cobra.ExactArgs(1),
		RunE:  gc.run,
	}

	cmd.Flags().StringVar(&gc.configPath, "config", "", "Path to the configuration file")
	cmd.Flags().StringArrayVar(&gc.params, "param", nil, "Report parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&gc.userID, "as", "", "User id to generate the report as")
	cmd.Flags().BoolVar(&gc.root, "root", false, "Request superuser elevation")
	cmd.Flags().StringVar(&gc.format, "format", export.FormatTable, "Output format (json, table)")
	cmd.Flags().DurationVar(&gc.timeout, "timeout", 5*time.Minute, "Overall deadline")

	_ = cmd.MarkFlagRequired("as")

	return cmd
}

// ParseParams turns repeated key=value flags into request values
func ParseParams(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		values.Add(key, value)
	}
	return values, nil
}

func (gc *GenerateCmd) run(cmd *cobra.Command, args []string) error {
	if gc.format != export.FormatJSON && gc.format != export.FormatTable {
		return fmt.Errorf("unsupported format %q", gc.format)
	}
	if gc.connect == nil {
		return fmt.Errorf("no store connector configured")
	}

	raw, err := ParseParams(gc.params)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), gc.timeout)
	defer cancel()

	session, err := gc.connect(ctx, gc.configPath, gc.registry)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer session.Close(context.Background())

	principal, err := session.ResolvePrincipal(ctx, gc.userID, gc.root)
	if err != nil {
		return err
	}

	result, err := session.Dispatch(ctx, args[0], principal, raw)
	if err != nil {
		return fmt.Errorf("failed to generate %s report: %w", args[0], err)
	}

	return gc.reporter.Handle(result, gc.format)
}
