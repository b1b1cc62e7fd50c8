package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/reconcile"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/shared/feishu"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// OrderReader 订单查询
type OrderReader interface {
	FindAll(ctx context.Context, spec entity.KindSpec, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error)
	FindByID(ctx context.Context, spec entity.KindSpec, id string) (*entity.Order, error)
}

// BatchLog 批次记录存储
type BatchLog interface {
	Create(ctx context.Context, batch *entity.ReconcileBatch) error
	FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ReconcileBatch, int64, error)
}

// AlertSender 告警卡片发送
type AlertSender interface {
	SendCard(ctx context.Context, chatID string, card feishu.InteractiveCard) error
}

// BatchRequest 批量入库请求
type BatchRequest struct {
	Orders []entity.Candidate `json:"orders" binding:"required"`
}

// BatchInput 批量入库调用参数
type BatchInput struct {
	Spec      entity.KindSpec
	Orders    []entity.Candidate
	Operator  string
	RequestID string
}

// OrderService 订单服务
type OrderService struct {
	orders     OrderReader
	batches    BatchLog
	reconciler *reconcile.Reconciler
	archiver   PayloadArchiver
	alert      AlertSender
	alertChat  string
	logger     *zap.Logger
}

// Option 可选依赖
type Option func(*OrderService)

// WithArchiver 启用批次报文归档
func WithArchiver(a PayloadArchiver) Option {
	return func(s *OrderService) { s.archiver = a }
}

// WithAlert 启用失败告警
func WithAlert(sender AlertSender, chatID string) Option {
	return func(s *OrderService) {
		s.alert = sender
		s.alertChat = chatID
	}
}

func NewOrderService(orders OrderReader, batches BatchLog, reconciler *reconcile.Reconciler, logger *zap.Logger, opts ...Option) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OrderService{
		orders:     orders,
		batches:    batches,
		reconciler: reconciler,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReconcileBatch 校验整个批次后执行对账
func (s *OrderService) ReconcileBatch(ctx context.Context, in BatchInput) (*reconcile.Report, error) {
	start := time.Now()
	batch := &entity.ReconcileBatch{
		ID:        uuid.New().String()[:32],
		Kind:      string(in.Spec.Kind),
		Operator:  in.Operator,
		RequestID: in.RequestID,
		Total:     len(in.Orders),
	}

	candidates := reconcile.CanonicalizeAll(in.Orders)
	if err := reconcile.Validate(in.Spec, candidates); err != nil {
		batch.Status = entity.BatchStatusRejected
		batch.ErrorMessage = err.Error()
		s.recordBatch(ctx, batch, start)
		return nil, err
	}

	s.archive(ctx, batch, in.Orders)

	report, err := s.reconciler.Reconcile(ctx, in.Spec, candidates)
	if err != nil {
		batch.Status = entity.BatchStatusFailed
		batch.ErrorMessage = err.Error()
		s.recordBatch(ctx, batch, start)
		return nil, fmt.Errorf("%s批量入库失败: %w", in.Spec.Label, err)
	}

	batch.Inserted = report.Stats.Inserted
	batch.Updated = report.Stats.Updated
	batch.Skipped = report.Stats.Skipped
	batch.Failed = report.Stats.Failed
	batch.Deduplicated = report.Stats.Deduplicated
	batch.Status = entity.BatchStatusSuccess
	if failures := report.Failures(); len(failures) > 0 {
		batch.Status = entity.BatchStatusPartial
		if raw, jsonErr := json.Marshal(failures); jsonErr == nil {
			batch.Failures = datatypes.JSON(raw)
		}
		go s.sendFailureAlert(in, batch.ID, failures)
	}
	s.recordBatch(ctx, batch, start)

	return report, nil
}

// List 订单列表
func (s *OrderService) List(ctx context.Context, spec entity.KindSpec, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error) {
	return s.orders.FindAll(ctx, spec, page, pageSize, filters)
}

// Get 订单详情
func (s *OrderService) Get(ctx context.Context, spec entity.KindSpec, id string) (*entity.Order, error) {
	return s.orders.FindByID(ctx, spec, id)
}

// ListBatches 对账批次记录
func (s *OrderService) ListBatches(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ReconcileBatch, int64, error) {
	if s.batches == nil {
		return nil, 0, errors.New("批次记录未启用")
	}
	return s.batches.FindAll(ctx, page, pageSize, filters)
}

func (s *OrderService) archive(ctx context.Context, batch *entity.ReconcileBatch, orders []entity.Candidate) {
	if s.archiver == nil {
		return
	}
	payload, err := json.Marshal(BatchRequest{Orders: orders})
	if err != nil {
		return
	}
	key := ArchiveKey(batch.Kind, batch.ID, time.Now())
	if err := s.archiver.Archive(ctx, key, payload); err != nil {
		s.logger.Warn("Archive batch payload failed", zap.String("batch_id", batch.ID), zap.Error(err))
		return
	}
	batch.ArchiveKey = key
}

// recordBatch 批次记录写入失败不影响接口结果
func (s *OrderService) recordBatch(ctx context.Context, batch *entity.ReconcileBatch, start time.Time) {
	if s.batches == nil {
		return
	}
	batch.Elapsed = time.Since(start).Milliseconds()
	if err := s.batches.Create(ctx, batch); err != nil {
		s.logger.Warn("Record reconcile batch failed", zap.String("batch_id", batch.ID), zap.Error(err))
	}
}

// sendFailureAlert 异步发送失败告警
func (s *OrderService) sendFailureAlert(in BatchInput, batchID string, failures []reconcile.Result) {
	if s.alert == nil || s.alertChat == "" {
		return
	}

	items := make([]feishu.BatchFailure, 0, len(failures))
	for _, f := range failures {
		items = append(items, feishu.BatchFailure{Index: f.Index, Key: f.Key, Error: f.Error})
	}
	card := feishu.NewReconcileFailureCard(in.Spec.Label, in.Operator, batchID, len(in.Orders), len(failures), items)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.alert.SendCard(ctx, s.alertChat, card); err != nil {
		s.logger.Warn("Send reconcile alert failed", zap.String("batch_id", batchID), zap.Error(err))
		return
	}
	s.logger.Info("Reconcile alert sent", zap.String("batch_id", batchID), zap.Int("failed", len(failures)))
}
