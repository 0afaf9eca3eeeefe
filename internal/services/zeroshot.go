package services

import (
	"context"
	"fmt"
	"time"

	"workflowx/src/metrics"
	"workflowx/src/model"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// ZeroShotClient calls a hosted NLI zero-shot classification model
type ZeroShotClient struct {
	client *resty.Client
	model  string
}

func NewZeroShotClient(cfg model.ZeroShotConfig) (*ZeroShotClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("zero-shot: %w", ErrNotConfigured)
	}
	c := newClient(cfg.BaseURL, cfg.Timeout).SetAuthToken(cfg.Token)
	return &ZeroShotClient{client: c, model: cfg.Model}, nil
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type zeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// ClassifyZeroShot returns the candidate labels ranked by score
func (z *ZeroShotClient) ClassifyZeroShot(ctx context.Context, text string, labels []string) ([]model.LabelScore, error) {
	defer metrics.ObserveSince("zero_shot", time.Now())

	resp, err := z.client.R().
		SetContext(ctx).
		SetBody(zeroShotRequest{Inputs: text, Parameters: zeroShotParameters{CandidateLabels: labels}}).
		Post("/models/" + z.model)
	if err := check("zero-shot", resp, err); err != nil {
		return nil, err
	}

	out, err := decodeZeroShot(resp.Body())
	if err != nil {
		return nil, err
	}
	if len(out.Labels) != len(out.Scores) {
		return nil, fmt.Errorf("zero-shot: %d labels but %d scores", len(out.Labels), len(out.Scores))
	}

	scores := make([]model.LabelScore, len(out.Labels))
	for i, l := range out.Labels {
		scores[i] = model.LabelScore{Label: l, Score: out.Scores[i]}
	}
	return scores, nil
}

// decodeZeroShot accepts both the object and the single-element list forms
func decodeZeroShot(body []byte) (zeroShotResponse, error) {
	var out zeroShotResponse
	if len(body) > 0 && body[0] == '[' {
		var list []zeroShotResponse
		if err := sonic.Unmarshal(body, &list); err != nil {
			return out, fmt.Errorf("decode zero-shot response: %w", err)
		}
		if len(list) == 0 {
			return out, fmt.Errorf("zero-shot: empty response")
		}
		return list[0], nil
	}
	if err := sonic.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode zero-shot response: %w", err)
	}
	return out, nil
}
