package domain

import (
	"fmt"
	"strings"
)

type RequestID string

type RenderStatus string

const (
	RenderStatusOngoing RenderStatus = "ONGOING"
	RenderStatusSuccess RenderStatus = "SUCCESS"
	RenderStatusFailed  RenderStatus = "FAILED"
)

func ParseRenderStatus(raw string) RenderStatus {
	return RenderStatus(strings.ToUpper(strings.TrimSpace(raw)))
}

func (s RenderStatus) IsTerminal() bool {
	return s == RenderStatusSuccess || s == RenderStatusFailed
}

func (s RenderStatus) Known() bool {
	switch s {
	case RenderStatusOngoing, RenderStatusSuccess, RenderStatusFailed:
		return true
	default:
		return false
	}
}

type RenderMetadata struct {
	ExecutionTime string
	FileSize      string
}

func (m RenderMetadata) IsZero() bool {
	return m.ExecutionTime == "" && m.FileSize == ""
}

type RenderResult struct {
	SignedURL string
	Metadata  RenderMetadata
}

type QueuedJob struct {
	RequestID RequestID
	StatusURL string
	Message   string
}

// Submission is the outcome of a render request. Exactly one of Result and
// Queued is set for the status codes the upstream documents (200 and 202).
type Submission struct {
	StatusCode int
	Result     *RenderResult
	Queued     *QueuedJob
}

type JobStatus struct {
	RequestID RequestID
	Status    RenderStatus
	Result    RenderResult
}

func (j JobStatus) String() string {
	return fmt.Sprintf("%s (%s)", j.RequestID, j.Status)
}
