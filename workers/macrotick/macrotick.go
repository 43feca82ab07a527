// Package macrotick runs the hourly settlement pass: action point
// allowances, per-corporation operating profit/loss, CEO salaries and
// dividend distribution. Each corporation settles in its own database
// transaction so one bad row never stalls the rest of the economy.
package macrotick

import (
	"strconv"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/jinzhu/gorm"
	"github.com/praxisgames/corpsim/csreg"
	"github.com/praxisgames/corpsim/external/slack"
	"github.com/praxisgames/corpsim/metrics"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/service/board"
	"github.com/praxisgames/corpsim/workers/common"
)

type macroWorker struct {
	done chan struct{}
}

var worker *macroWorker

func Work() {
	if worker == nil {
		worker = &macroWorker{
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
	log.Info("macro tick starting", "time", start)

	worker.grantActionPoints()

	settled, failed := worker.settleCorporations()

	worker.settlePayouts()

	metrics.Timing("tick.macro", start)

	log.Info(
		"macro tick complete",
		"settled", settled,
		"failed", failed,
		"elapsed", clock.Now().Sub(start))

	{
		msg := slack.NewTickStatus()
		msg.SetBody(struct {
			Type    string `json:"type"`
			Settled int    `json:"settled"`
			Failed  int    `json:"failed"`
			Elapsed string `json:"elapsed"`
		}{
			"macro_tick",
			settled,
			failed,
			clock.Now().Sub(start).String(),
		})
		slack.Notify(msg)
	}
}

func envInt(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(env.GetVar(key), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

// grantActionPoints gives every user the base allowance and every
// effective CEO the bonus on top, capped so idle users don't stockpile
// forever.
func (w *macroWorker) grantActionPoints() {
	base := envInt("ACTION_POINTS_PER_TICK", 12)
	bonus := envInt("CEO_ACTION_BONUS", 6)
	limit := envInt("ACTION_POINTS_CAP", 96)

	tx := db.Begin()

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Error("panicked while granting action points")
		}
	}()

	err := tx.
		Model(&models.User{}).
		Update("action_points", gorm.Expr(
			"LEAST(action_points + ?, ?)", base, limit)).Error

	if err != nil {
		tx.Rollback()
		log.Error("failed to grant action allowance", "error", err)
		return
	}

	// the CEO seat may be acting rather than elected, so derive it
	// per corporation instead of trusting ceo_id
	corps := []models.Corporation{}
	if err := tx.Find(&corps).Error; err != nil {
		tx.Rollback()
		log.Error("failed to list corporations for CEO bonus", "error", err)
		return
	}

	srv := csreg.Services.Board().WithTx(tx)

	for i := range corps {
		members, err := srv.Members(corps[i].ID)
		if err != nil {
			tx.Rollback()
			log.Error(
				"failed to derive board for CEO bonus",
				"corporation", corps[i].ID,
				"error", err)
			return
		}

		if len(members) == 0 || members[0].Role != board.RoleCEO {
			// nobody holds the CEO seat, no bonus for this corporation
			continue
		}

		err = tx.
			Model(&models.User{}).
			Where("id = ?", members[0].UserID).
			Update("action_points", gorm.Expr(
				"LEAST(action_points + ?, ?)", bonus, limit)).Error

		if err != nil {
			tx.Rollback()
			log.Error(
				"failed to grant CEO bonus",
				"corporation", corps[i].ID,
				"user", members[0].UserID,
				"error", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("action allowance database error", "error", err)
	}
}

func (w *macroWorker) settleCorporations() (settled, failed int) {
	corps := []models.Corporation{}

	// only corporations actually operating somewhere have anything to
	// settle
	q := db.DB().
		Where("id IN (SELECT corporation_id FROM market_entries)").
		Find(&corps)
	if q.Error != nil && !q.RecordNotFound() {
		log.Error("macro tick database error", "error", q.Error)
		return
	}

	for i := range corps {
		if w.settleOne(&corps[i]) {
			settled++
		} else {
			failed++
			metrics.Incr("tick.settle_failure")
		}
	}

	return
}

func (w *macroWorker) settleOne(corp *models.Corporation) (ok bool) {
	tx := db.Begin()

	// handle panics to not leak DB transactions
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Error("panicked while settling corporation", "corporation", corp.ID)
			ok = false
		}
	}()

	result, err := csreg.Services.Finance().WithTx(tx).Settle(corp)
	if err != nil {
		tx.Rollback()
		log.Error(
			"failed to settle corporation",
			"corporation", corp.ID,
			"error", err)
		return false
	}

	if err := tx.Commit().Error; err != nil {
		log.Error(
			"macro tick database error",
			"corporation", corp.ID,
			"error", err)
		return false
	}

	log.Debug(
		"corporation settled",
		"corporation", corp.ID,
		"net", result.Net,
		"share_price", result.SharePrice)

	return true
}

// settlePayouts pays one hour of salary and dividends for every
// corporation, each in its own transaction.
func (w *macroWorker) settlePayouts() {
	corps := []models.Corporation{}

	q := db.DB().Find(&corps)
	if q.Error != nil && !q.RecordNotFound() {
		log.Error("macro tick database error", "error", q.Error)
		return
	}

	for i := range corps {
		w.payOne(&corps[i])
	}
}

func (w *macroWorker) payOne(corp *models.Corporation) {
	tx := db.Begin()

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Error("panicked while paying out", "corporation", corp.ID)
		}
	}()

	srv := csreg.Services.Finance().WithTx(tx)

	if err := srv.SettleSalary(corp); err != nil {
		tx.Rollback()
		log.Error(
			"failed to pay CEO salary",
			"corporation", corp.ID,
			"error", err)
		metrics.Incr("tick.payout_failure")
		return
	}

	if err := srv.SettleDividends(corp); err != nil {
		tx.Rollback()
		log.Error(
			"failed to pay dividends",
			"corporation", corp.ID,
			"error", err)
		metrics.Incr("tick.payout_failure")
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Error(
			"macro tick database error",
			"corporation", corp.ID,
			"error", err)
	}
}
