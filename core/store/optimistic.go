package store

// runOptimistic 乐观变更的统一骨架：本地变更（含持久化）先同步执行，
// 服务端调用随后发出。失败时执行 rollback；rollback 传nil表示
// 保留本地结果继续离线工作（闹钟的策略），非nil表示撤销本地变更
// 恢复一致（收藏的策略）。两种策略都把错误原样交还调用方。
func runOptimistic(apply func(), remote func() error, rollback func()) error {
	apply()
	if err := remote(); err != nil {
		if rollback != nil {
			rollback()
		}
		return err
	}
	return nil
}
