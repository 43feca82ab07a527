// Package proposals sweeps expired board proposals and resolves them
// by whatever votes were cast.
package proposals

import (
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/log"
	"github.com/praxisgames/corpsim/csreg"
	"github.com/praxisgames/corpsim/metrics"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/workers/common"
)

type proposalWorker struct {
	done chan struct{}
}

var worker *proposalWorker

func Work() {
	if worker == nil {
		worker = &proposalWorker{
			done: make(chan struct{}, 1),
		}
		worker.done <- struct{}{}
	}

	// make sure not to overlap if the work routine is taking long
	if common.WaitTimeout(worker.done, time.Second) {
		// timed out, so let's skip this round and wait until it finishes
		return
	}

	defer func() {
		worker.done <- struct{}{}
	}()

	start := clock.Now()

	expired := []models.BoardProposal{}

	q := db.DB().
		Where("status = ? AND expires_at <= ?", enum.ProposalActive, start).
		Find(&expired)

	if q.Error != nil && !q.RecordNotFound() {
		log.Error("proposal worker database error", "error", q.Error)
		return
	}

	if len(expired) == 0 {
		return
	}

	log.Info("resolving expired proposals", "count", len(expired))

	for i := range expired {
		worker.resolveOne(&expired[i])
	}

	metrics.Timing("tick.proposals", start)
}

func (w *proposalWorker) resolveOne(proposal *models.BoardProposal) {
	tx := db.Begin()

	// handle panics to not leak DB transactions
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Error("panicked while resolving proposal", "proposal", proposal.ID)
		}
	}()

	// Resolve re-locks and re-checks the status, so a proposal that
	// got resolved by a late vote between the scan and now is a no-op
	resolved, err := csreg.Services.Board().WithTx(tx).Resolve(proposal.ID)
	if err != nil {
		tx.Rollback()
		log.Error(
			"failed to resolve proposal",
			"proposal", proposal.ID,
			"corporation", proposal.CorporationID,
			"error", err)
		metrics.Incr("tick.resolve_failure")
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Error(
			"proposal worker database error",
			"proposal", proposal.ID,
			"error", err)
		return
	}

	log.Info(
		"proposal resolved",
		"proposal", resolved.ID,
		"type", resolved.Type,
		"status", resolved.Status)
}
