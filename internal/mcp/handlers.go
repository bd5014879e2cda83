package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tkge-lab/tkgel/internal/config"
	"github.com/tkge-lab/tkgel/internal/profiles"
	"github.com/tkge-lab/tkgel/internal/trace"
)

// load resolves the server's config file against the built-in profiles.
func (s *Server) load() (*config.Config, error) {
	cfg, err := config.LoadFile(s.config, profiles.Registry{})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (s *Server) handleGet(ctx context.Context, req *sdk.CallToolRequest, args GetInput) (*sdk.CallToolResult, GetOutput, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, GetOutput{}, err
	}
	value, err := cfg.Get(args.Key)
	if err != nil {
		return nil, GetOutput{}, err
	}
	return nil, GetOutput{Key: args.Key, Value: value}, nil
}

func (s *Server) handleValidate(ctx context.Context, req *sdk.CallToolRequest, args ValidateInput) (*sdk.CallToolResult, ValidateOutput, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, ValidateOutput{}, err
	}

	out := ValidateOutput{Valid: true}
	if err := profiles.Validate(cfg); err != nil {
		out.Valid = false
		out.Problems = append(out.Problems, err.Error())
	}

	base, err := profiles.Base()
	if err != nil {
		return nil, ValidateOutput{}, err
	}
	unknown := base.UnknownKeys(cfg)
	sort.Strings(unknown)
	if len(unknown) > 0 {
		out.Valid = false
		out.UnknownKeys = unknown
	}
	return nil, out, nil
}

func (s *Server) handleResolve(ctx context.Context, req *sdk.CallToolRequest, args ResolveInput) (*sdk.CallToolResult, ResolveOutput, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, ResolveOutput{}, err
	}
	data, err := cfg.Bytes()
	if err != nil {
		return nil, ResolveOutput{}, err
	}
	return nil, ResolveOutput{YAML: string(data)}, nil
}

func (s *Server) handleTraceBest(ctx context.Context, req *sdk.CallToolRequest, args TraceBestInput) (*sdk.CallToolResult, TraceBestOutput, error) {
	metric := args.Metric
	if metric == "" {
		cfg, err := s.load()
		if err != nil {
			return nil, TraceBestOutput{}, err
		}
		metric, err = cfg.GetString("valid.metric")
		if err != nil {
			return nil, TraceBestOutput{}, fmt.Errorf("no metric given and valid.metric unset: %w", err)
		}
	}

	store, err := trace.OpenStore(filepath.Join(s.root, args.JobDir))
	if err != nil {
		return nil, TraceBestOutput{}, err
	}
	defer store.Close()

	best, err := store.BestEpoch(ctx, args.JobID, metric)
	if err != nil {
		return nil, TraceBestOutput{}, err
	}
	return nil, TraceBestOutput{
		Epoch:  best.Epoch,
		Value:  best.Metrics[metric],
		Metric: metric,
	}, nil
}

// handleConfigResource serves the resolved configuration as YAML.
func (s *Server) handleConfigResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	data, err := cfg.Bytes()
	if err != nil {
		return nil, err
	}
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      "tkgel://config/resolved",
				MIMEType: "application/yaml",
				Text:     string(data),
			},
		},
	}, nil
}
