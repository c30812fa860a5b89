package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/healthbot/server/internal/agent/model"
)

const ToolMedicalSearch = "medical_search"

// ===================================
// Medical Search Tool
// ===================================

type MedicalSearchInput struct {
	Query string `json:"query"`
}

type MedicalSearchOutput struct {
	Documents []model.Document `json:"documents"`
	Total     int              `json:"total"`
}

// SearchFunc runs one query against the trusted medical sources.
type SearchFunc func(ctx context.Context, query string) ([]model.Document, error)

// NewMedicalSearchTool exposes search to the chat model as a callable tool.
func NewMedicalSearchTool(search SearchFunc) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolMedicalSearch,
			Desc: "Search trusted medical sources (Mayo Clinic, WebMD, NIH, CDC, Healthline, MedlinePlus) for patient education material about a health topic. Returns the source URL and text of each result.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     schema.String,
					Desc:     "Search keywords for the health topic, e.g. \"asthma symptoms treatment causes\".",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *MedicalSearchInput) (*MedicalSearchOutput, error) {
			query := strings.TrimSpace(in.Query)
			if query == "" {
				return nil, fmt.Errorf("query is required")
			}

			docs, err := search(ctx, query)
			if err != nil {
				return nil, err
			}
			if docs == nil {
				docs = []model.Document{}
			}

			return &MedicalSearchOutput{
				Documents: docs,
				Total:     len(docs),
			}, nil
		},
	)
}
