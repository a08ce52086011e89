package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

// FunnelEngine applies status changes to leads and MQLs and keeps the
// downstream stage in step with them:
//
//	Lead Answered      <=> MQL exists
//	MQL  Showed        <=> SQL exists
//
// Every status write runs in the same transaction as its cascade, with
// the parent row locked, so concurrent changes to one entity serialize.
type FunnelEngine struct {
	Tx     entity.Transactor
	Events EventPublisher
	Logger *zap.Logger

	now func() time.Time
}

func NewFunnelEngine(tx entity.Transactor, events EventPublisher, logger *zap.Logger) *FunnelEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FunnelEngine{
		Tx:     tx,
		Events: events,
		Logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// UpdateLeadStatus validates raw and applies it with OnLeadStatusChange.
func (e *FunnelEngine) UpdateLeadStatus(ctx context.Context, leadID, raw string) (*entity.Lead, CascadeResult, error) {
	status, err := parseLeadStatus(raw)
	if err != nil {
		return nil, CascadeResult{}, err
	}
	return e.OnLeadStatusChange(ctx, leadID, status)
}

func (e *FunnelEngine) OnLeadStatusChange(ctx context.Context, leadID string, status entity.LeadStatus) (*entity.Lead, CascadeResult, error) {
	if !status.Valid() {
		return nil, CascadeResult{}, newValidationError("invalid lead status " + string(status))
	}

	var (
		lead   *entity.Lead
		result CascadeResult
	)
	err := e.Tx.WithinTx(ctx, func(ctx context.Context, s entity.Stores) error {
		if _, err := s.Leads.FindByIDForUpdate(ctx, leadID); err != nil {
			return storageError("load lead", "lead", leadID, err)
		}
		updated, err := s.Leads.UpdateStatus(ctx, leadID, status)
		if err != nil {
			return storageError("update lead status", "lead", leadID, err)
		}
		res, err := cascadeFromLead(ctx, s, updated)
		if err != nil {
			return err
		}
		lead, result = updated, res
		return nil
	})
	if err != nil {
		err = storageError("update lead status", "lead", leadID, err)
		e.logFailure("lead status change failed", err, zap.String("lead_id", leadID), zap.String("status", string(status)))
		return nil, CascadeResult{}, err
	}

	e.Logger.Info("lead status changed",
		zap.String("lead_id", lead.ID),
		zap.String("status", string(lead.Status)),
		zap.Bool("mql_created", result.MQLCreated != nil),
		zap.Bool("mql_removed", result.MQLRemoved != nil),
		zap.Bool("sql_removed", result.SQLRemoved != nil),
	)
	e.publish(ctx, lead, result)
	return lead, result, nil
}

// UpdateMQLStatus validates raw and applies it with OnMQLStatusChange.
func (e *FunnelEngine) UpdateMQLStatus(ctx context.Context, mqlID, raw string) (*entity.MQL, CascadeResult, error) {
	status, err := parseMQLStatus(raw)
	if err != nil {
		return nil, CascadeResult{}, err
	}
	return e.OnMQLStatusChange(ctx, mqlID, status)
}

func (e *FunnelEngine) OnMQLStatusChange(ctx context.Context, mqlID string, status entity.MQLStatus) (*entity.MQL, CascadeResult, error) {
	if !status.Valid() {
		return nil, CascadeResult{}, newValidationError("invalid mql status " + string(status))
	}

	var (
		mql    *entity.MQL
		lead   *entity.Lead
		result CascadeResult
	)
	err := e.Tx.WithinTx(ctx, func(ctx context.Context, s entity.Stores) error {
		current, err := s.MQLs.FindByIDForUpdate(ctx, mqlID)
		if err != nil {
			return storageError("load mql", "mql", mqlID, err)
		}
		owner, err := s.Leads.FindByID(ctx, current.ContactRef)
		if err != nil {
			return storageError("load lead", "lead", current.ContactRef, err)
		}
		updated, err := s.MQLs.UpdateStatus(ctx, mqlID, status)
		if err != nil {
			return storageError("update mql status", "mql", mqlID, err)
		}
		res, err := cascadeFromMQL(ctx, s, updated)
		if err != nil {
			return err
		}
		mql, lead, result = updated, owner, res
		return nil
	})
	if err != nil {
		err = storageError("update mql status", "mql", mqlID, err)
		e.logFailure("mql status change failed", err, zap.String("mql_id", mqlID), zap.String("status", string(status)))
		return nil, CascadeResult{}, err
	}

	e.Logger.Info("mql status changed",
		zap.String("mql_id", mql.ID),
		zap.String("lead_id", mql.ContactRef),
		zap.String("status", string(mql.Status)),
		zap.Bool("sql_created", result.SQLCreated != nil),
		zap.Bool("sql_removed", result.SQLRemoved != nil),
	)
	e.publish(ctx, lead, result)
	return mql, result, nil
}

// UpdateSQLStatus records the outcome of a sales-qualified lead. SQL is the
// last stage so nothing cascades.
func (e *FunnelEngine) UpdateSQLStatus(ctx context.Context, sqlID, raw string) (*entity.SQL, error) {
	status, err := parseSQLStatus(raw)
	if err != nil {
		return nil, err
	}
	updated, err := e.Tx.Stores().SQLs.UpdateStatus(ctx, sqlID, status)
	if err != nil {
		err = storageError("update sql status", "sql", sqlID, err)
		e.logFailure("sql status change failed", err, zap.String("sql_id", sqlID))
		return nil, err
	}
	e.Logger.Info("sql status changed", zap.String("sql_id", updated.ID), zap.String("status", string(updated.Status)))
	return updated, nil
}

func cascadeFromLead(ctx context.Context, s entity.Stores, lead *entity.Lead) (CascadeResult, error) {
	var res CascadeResult

	switch lead.Status.MQLCascade() {
	case entity.CascadeEnsure:
		mql, created, err := ensureMQL(ctx, s, lead.ID)
		if err != nil {
			return res, err
		}
		if created {
			res.MQLCreated = mql
		}

	case entity.CascadeRemove:
		existing, err := s.MQLs.FindByParent(ctx, lead.ID)
		if err != nil {
			return res, storageError("find mql", "mql", lead.ID, err)
		}
		if existing == nil {
			return res, nil
		}
		// lock the MQL so a concurrent MQL transition cannot re-create its SQL
		if _, err := s.MQLs.FindByIDForUpdate(ctx, existing.ID); err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return res, nil
			}
			return res, storageError("lock mql", "mql", existing.ID, err)
		}
		sqlRemoved, err := s.SQLs.DeleteByParent(ctx, existing.ID)
		if err != nil {
			return res, storageError("delete sql", "sql", existing.ID, err)
		}
		mqlRemoved, err := s.MQLs.DeleteByParent(ctx, lead.ID)
		if err != nil {
			return res, storageError("delete mql", "mql", lead.ID, err)
		}
		res.SQLRemoved, res.MQLRemoved = sqlRemoved, mqlRemoved
	}

	return res, nil
}

func cascadeFromMQL(ctx context.Context, s entity.Stores, mql *entity.MQL) (CascadeResult, error) {
	var res CascadeResult

	switch mql.Status.SQLCascade() {
	case entity.CascadeEnsure:
		sql, created, err := ensureSQL(ctx, s, mql.ID)
		if err != nil {
			return res, err
		}
		if created {
			res.SQLCreated = sql
		}

	case entity.CascadeRemove:
		removed, err := s.SQLs.DeleteByParent(ctx, mql.ID)
		if err != nil {
			return res, storageError("delete sql", "sql", mql.ID, err)
		}
		res.SQLRemoved = removed
	}

	return res, nil
}

// ensureMQL never touches an existing MQL: re-answering a lead must not
// reset an MQL that already showed.
func ensureMQL(ctx context.Context, s entity.Stores, leadID string) (*entity.MQL, bool, error) {
	existing, err := s.MQLs.FindByParent(ctx, leadID)
	if err != nil {
		return nil, false, storageError("find mql", "mql", leadID, err)
	}
	if existing != nil {
		return existing, false, nil
	}

	mql, created, err := s.MQLs.CreateIfAbsent(ctx, leadID)
	if errors.Is(err, entity.ErrConflict) {
		// lost a race against another writer; theirs is as good as ours
		mql, err = s.MQLs.FindByParent(ctx, leadID)
		created = false
	}
	if err != nil {
		return nil, false, storageError("create mql", "mql", leadID, err)
	}
	return mql, created, nil
}

func ensureSQL(ctx context.Context, s entity.Stores, mqlID string) (*entity.SQL, bool, error) {
	existing, err := s.SQLs.FindByParent(ctx, mqlID)
	if err != nil {
		return nil, false, storageError("find sql", "sql", mqlID, err)
	}
	if existing != nil {
		return existing, false, nil
	}

	sql, created, err := s.SQLs.CreateIfAbsent(ctx, mqlID)
	if errors.Is(err, entity.ErrConflict) {
		sql, err = s.SQLs.FindByParent(ctx, mqlID)
		created = false
	}
	if err != nil {
		return nil, false, storageError("create sql", "sql", mqlID, err)
	}
	return sql, created, nil
}

func (e *FunnelEngine) publish(ctx context.Context, lead *entity.Lead, result CascadeResult) {
	if e.Events == nil || lead == nil || result.Empty() {
		return
	}
	for _, ev := range result.Events(lead, e.now()) {
		if err := e.Events.PublishFunnelEvent(ctx, ev); err != nil {
			// the cascade is committed; a lost event only delays notifications
			e.Logger.Warn("funnel event not published",
				zap.String("type", string(ev.Type)),
				zap.String("lead_id", ev.LeadID),
				zap.Error(err),
			)
		}
	}
}

func (e *FunnelEngine) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if IsDomainError(err) {
		e.Logger.Debug(msg, fields...)
		return
	}
	e.Logger.Error(msg, fields...)
}
