package consts

type ContextKey string

// TraceKey 请求链路追踪ID的上下文键
const TraceKey ContextKey = "trace-id"
