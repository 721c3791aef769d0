package mq

import "context"

// Message 与具体消息中间件无关的消息体
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

type PublishResult struct {
	Partition int32
	Offset    int64
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) (PublishResult, error)
	Close() error
}

// Handler 返回 nil 表示消息已处理，可以提交位点
type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

// HandlerFunc 适配普通函数
type HandlerFunc func(ctx context.Context, msg Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg Message) error { return f(ctx, msg) }

type Consumer interface {
	Run(ctx context.Context, handler Handler) error
	Close() error
}
