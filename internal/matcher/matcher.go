// Package matcher implements the chained-join core of the reconciliation
// pipeline: the substring-containment reference match between statement
// message references and ledger descriptions, the join back to statement
// rows, the claims link on the UTR reference, and the lookup indices the
// annotator consumes.
package matcher

import (
	"strings"

	"settlement-recon-service/internal/models"
	"settlement-recon-service/pkg/logger"
)

// ReferenceMatcher joins extracted statement rows to ledger entries through
// literal substring containment of the message reference in the ledger
// description.
type ReferenceMatcher struct {
	logger logger.Logger
}

// NewReferenceMatcher creates a ReferenceMatcher.
func NewReferenceMatcher() *ReferenceMatcher {
	return &ReferenceMatcher{
		logger: logger.GetGlobalLogger().WithComponent("reference_matcher"),
	}
}

// MatchReferences scans the full ledger once per distinct message reference
// (deduplicated in first-seen order) and tags every ledger entry whose
// description contains the reference as a literal substring. Matching is
// case-sensitive and no regex metacharacters are interpreted.
//
// This is deliberately an O(references × ledger) scan; correctness of the
// containment semantics, not asymptotic efficiency, is the contract.
func (rm *ReferenceMatcher) MatchReferences(statements *models.StatementTable, ledger []models.LedgerEntry) []models.ReferenceMatch {
	var matches []models.ReferenceMatch
	for _, msgRef := range distinctMessageRefs(statements) {
		for _, entry := range ledger {
			if strings.Contains(entry.Description, msgRef) {
				matches = append(matches, models.ReferenceMatch{Entry: entry, MsgRef: msgRef})
			}
		}
	}

	rm.logger.WithFields(logger.Fields{
		"ledger_entries": len(ledger),
		"matches":        len(matches),
	}).Info("Completed reference matching")
	return matches
}

// JoinStatements inner-joins tagged ledger entries back to the statement
// rows on the message reference, recovering every original statement column.
// A message reference appearing on several statement rows fans out to one
// joined row per pairing.
func (rm *ReferenceMatcher) JoinStatements(matches []models.ReferenceMatch, statements *models.StatementTable) []models.MatchedStatement {
	byMsgRef := make(map[string][]models.StatementRow)
	for _, row := range statements.Rows {
		byMsgRef[row.MsgReferNo] = append(byMsgRef[row.MsgReferNo], row)
	}

	var joined []models.MatchedStatement
	for _, m := range matches {
		for _, row := range byMsgRef[m.MsgRef] {
			joined = append(joined, models.MatchedStatement{
				Entry:     m.Entry,
				MsgRef:    m.MsgRef,
				Statement: row,
			})
		}
	}
	return joined
}

// distinctMessageRefs returns the distinct, non-blank message references of
// the statement table in first-seen order.
func distinctMessageRefs(statements *models.StatementTable) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, row := range statements.Rows {
		ref := row.MsgReferNo
		if strings.TrimSpace(ref) == "" {
			continue
		}
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// ClaimsLinker inner-joins reference-matched statement rows to MIS claims on
// the UTR reference.
type ClaimsLinker struct {
	logger logger.Logger
}

// NewClaimsLinker creates a ClaimsLinker.
func NewClaimsLinker() *ClaimsLinker {
	return &ClaimsLinker{
		logger: logger.GetGlobalLogger().WithComponent("claims_linker"),
	}
}

// LinkClaims filters claims to those with a non-blank UTR reference, then
// inner-joins the matched statement rows on statement ReferNo = claim UTR.
// Multiple claims sharing a UTR fan out; no deduplication is applied.
func (cl *ClaimsLinker) LinkClaims(matched []models.MatchedStatement, claims []models.ClaimRecord, statementColumns []string) *models.ConsolidatedSet {
	byUTR := make(map[string][]models.ClaimRecord)
	eligible := 0
	for _, claim := range claims {
		if strings.TrimSpace(claim.UTRReference) == "" {
			continue
		}
		eligible++
		byUTR[claim.UTRReference] = append(byUTR[claim.UTRReference], claim)
	}

	result := &models.ConsolidatedSet{StatementColumns: statementColumns}
	for _, m := range matched {
		for _, claim := range byUTR[m.Statement.ReferNo] {
			result.Records = append(result.Records, models.ConsolidatedRecord{
				Entry:     m.Entry,
				MsgRef:    m.MsgRef,
				Statement: m.Statement,
				Claim:     claim,
			})
		}
	}

	cl.logger.WithFields(logger.Fields{
		"claims_total":    len(claims),
		"claims_eligible": eligible,
		"chain_matches":   len(result.Records),
	}).Info("Linked claims to matched statements")
	return result
}
