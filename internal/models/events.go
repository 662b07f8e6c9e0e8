package models

import "time"

type TemplateEventType string

const (
	EventTemplateCreated           TemplateEventType = "template_created"
	EventTemplateUpdated           TemplateEventType = "template_updated"
	EventTemplateSubmitted         TemplateEventType = "template_submitted"
	EventTemplateApprovalProposed  TemplateEventType = "template_approval_proposed"
	EventTemplateRejectionProposed TemplateEventType = "template_rejection_proposed"
	EventTemplateApproved          TemplateEventType = "template_approved"
	EventTemplateRejected          TemplateEventType = "template_rejected"
	EventTemplateDeployed          TemplateEventType = "template_deployed"
	EventTemplateRetired           TemplateEventType = "template_retired"
	EventTemplateArchived          TemplateEventType = "template_archived"
	EventPolicyCreated             TemplateEventType = "policy_created_from_template"
	EventRegistryPaused            TemplateEventType = "paused"
	EventRegistryUnpaused          TemplateEventType = "unpaused"
)

// TemplateEvent describes a committed registry write.
type TemplateEvent struct {
	Type       TemplateEventType `json:"type"`
	TemplateID uint64            `json:"template_id,omitempty"`
	PolicyID   uint64            `json:"policy_id,omitempty"`
	ProposalID uint64            `json:"proposal_id,omitempty"`
	Actor      string            `json:"actor"`
	Status     TemplateStatus    `json:"status,omitempty"`
	Version    uint32            `json:"version,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	At         time.Time         `json:"at"`
}
