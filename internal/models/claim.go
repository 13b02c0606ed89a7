package models

import "strings"

// ClaimTier reflects upstream mining confidence for a claim.
type ClaimTier string

const (
	TierPrimary   ClaimTier = "primary"
	TierSecondary ClaimTier = "secondary"
	TierTertiary  ClaimTier = "tertiary"
)

// Claim is a short factual assertion under evaluation. Claims are ordered by
// (tier, priority) and exist only for the lifetime of one request.
type Claim struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Tier     ClaimTier `json:"tier"`
	Priority int       `json:"priority"`
}

// ClaimContext carries optional article metadata supplied by the caller
// alongside a claim (title, domain, description of the page the claim was
// mined from). All fields may be empty.
type ClaimContext struct {
	ArticleTitle  string `json:"article_title,omitempty"`
	ArticleDomain string `json:"article_domain,omitempty"`
	Description   string `json:"description,omitempty"`
}

// MinClaimLength is the minimum number of characters for well-formed claim text.
const MinClaimLength = 8

// IsWellFormed reports whether the claim text meets the minimum length bar.
// Short or empty claims still flow through the pipeline via the non-claim
// fast path; they are never rejected outright.
func (c Claim) IsWellFormed() bool {
	return len(strings.TrimSpace(c.Text)) >= MinClaimLength
}
