package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

// Reconcile walks every lead and MQL and re-applies its cascade, creating
// missing MQLs/SQLs and removing stale ones. It repairs records written
// around the engine (manual edits, imports, older deployments). Each
// entity is fixed in its own transaction; a failure stops the run and
// returns what was repaired so far.
func (e *FunnelEngine) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	leads, err := e.Tx.Stores().Leads.List(ctx)
	if err != nil {
		return report, storageError("list leads", "lead", "", err)
	}
	for _, l := range leads {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		var (
			lead *entity.Lead
			res  CascadeResult
		)
		err := e.Tx.WithinTx(ctx, func(ctx context.Context, s entity.Stores) error {
			locked, err := s.Leads.FindByIDForUpdate(ctx, l.ID)
			if err != nil {
				return err
			}
			r, err := cascadeFromLead(ctx, s, locked)
			if err != nil {
				return err
			}
			lead, res = locked, r
			return nil
		})
		if err != nil {
			return report, storageError("reconcile lead", "lead", l.ID, err)
		}
		report.LeadsChecked++
		report.add(res)
		e.publish(ctx, lead, res)
	}

	mqls, err := e.Tx.Stores().MQLs.List(ctx)
	if err != nil {
		return report, storageError("list mqls", "mql", "", err)
	}
	for _, m := range mqls {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		var (
			lead *entity.Lead
			res  CascadeResult
		)
		err := e.Tx.WithinTx(ctx, func(ctx context.Context, s entity.Stores) error {
			locked, err := s.MQLs.FindByIDForUpdate(ctx, m.ID)
			if err != nil {
				return err
			}
			owner, err := s.Leads.FindByID(ctx, locked.ContactRef)
			if err != nil {
				return err
			}
			r, err := cascadeFromMQL(ctx, s, locked)
			if err != nil {
				return err
			}
			lead, res = owner, r
			return nil
		})
		if errors.Is(err, entity.ErrNotFound) {
			// removed by the lead pass or a concurrent transition
			continue
		}
		if err != nil {
			return report, storageError("reconcile mql", "mql", m.ID, err)
		}
		report.MQLsChecked++
		report.add(res)
		e.publish(ctx, lead, res)
	}

	if report.Repaired() > 0 {
		e.Logger.Warn("funnel reconciled", zap.Any("report", report))
	} else {
		e.Logger.Debug("funnel consistent", zap.Int("leads", report.LeadsChecked), zap.Int("mqls", report.MQLsChecked))
	}
	return report, nil
}
