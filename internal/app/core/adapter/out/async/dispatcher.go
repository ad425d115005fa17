package async

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

// DefaultBufferSize 預設輸送帶容量
const DefaultBufferSize = 1024

// Dispatcher 非同步事件發布器
//
// Publish(不等待) -> Channel -> Run Loop -> 下游 Publisher
//
// 下游很慢或故障時，事件會被丟棄並記錄，絕不阻塞記帳流程
type Dispatcher struct {
	next usecase.EventPublisher
	// 輸送帶 負責接收事件
	events chan usecase.TransactionEvent
	// 單筆發布逾時
	timeout time.Duration

	dropped atomic.Uint64
	failed  atomic.Uint64

	wg      sync.WaitGroup
	started atomic.Bool
}

// Option Dispatcher 設定
type Option func(*Dispatcher)

// WithBufferSize 設定 channel 容量
func WithBufferSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.events = make(chan usecase.TransactionEvent, n)
		}
	}
}

// WithPublishTimeout 設定下游單次發布的逾時 (<= 0 時沿用預設)
func WithPublishTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewDispatcher 建立一個新的 Dispatcher 實例
//
// 參數:
//
//	next: 真正送出事件的 Publisher (Kafka / Redis / 檔案)
//	opts: 設定
//
// 回傳:
//
//	*Dispatcher: Dispatcher 實例，需呼叫 Start 才會開始消化事件
func NewDispatcher(next usecase.EventPublisher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		next:    next,
		events:  make(chan usecase.TransactionEvent, DefaultBufferSize),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Publish 放入輸送帶，滿了就丟棄
func (d *Dispatcher) Publish(ctx context.Context, event usecase.TransactionEvent) error {
	select {
	case d.events <- event:
	default:
		d.dropped.Add(1)
		logrus.WithFields(logrus.Fields{
			"event_id": event.EventID,
			"tx_id":    event.TxID,
			"type":     event.Type,
		}).Warn("event buffer full, dropping event")
	}
	return nil
}

// Start 啟動發布迴圈 (非同步)，ctx 結束時會把剩下的事件送完
func (d *Dispatcher) Start(ctx context.Context) {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	d.wg.Add(1)
	go d.run(ctx)
}

// Wait 等待迴圈結束 (ctx 取消後)
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Dropped 因 buffer 滿而丟棄的事件數
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Failed 下游回傳錯誤的事件數
func (d *Dispatcher) Failed() uint64 {
	return d.failed.Load()
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的事件處理完
			d.drain()
			return
		case event := <-d.events:
			d.deliver(event)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.events:
			d.deliver(event)
		default:
			return
		}
	}
}

// deliver 送出單筆事件，失敗只記錄不重試
func (d *Dispatcher) deliver(event usecase.TransactionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.next.Publish(ctx, event); err != nil {
		d.failed.Add(1)
		logrus.WithError(err).WithFields(logrus.Fields{
			"event_id": event.EventID,
			"tx_id":    event.TxID,
			"type":     event.Type,
		}).Warn("failed to publish transaction event")
	}
}

var _ usecase.EventPublisher = (*Dispatcher)(nil)
