package errors

import "errors"

// ErrUniqueViolation 唯一约束冲突：并发写入时数据库拒绝了后到的一方。
// Repository 层在捕获驱动级冲突后返回此错误，
// Service 层据此映射为各模块的 Conflict 业务错误，禁止依赖错误消息文本判断。
var ErrUniqueViolation = errors.New("唯一约束冲突：记录已存在")
