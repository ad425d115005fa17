package async

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

// LogPublisher 只把事件寫進 log，沒有設定外部 broker 時使用
type LogPublisher struct {
	logger logrus.FieldLogger
}

func NewLogPublisher(logger logrus.FieldLogger) *LogPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event usecase.TransactionEvent) error {
	p.logger.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"type":     event.Type,
		"tx_id":    event.TxID,
		"key":      event.Key(),
		"amount":   event.Amount,
	}).Info("transaction event")
	return nil
}

var _ usecase.EventPublisher = (*LogPublisher)(nil)
