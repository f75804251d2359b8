package game

import "go.uber.org/zap"

// Evaluate 只统计存活的非主持人玩家。独立/中立阵营按“非黑手党”计入。
func Evaluate(gs *GameState) *WinResult {
	var counts FactionCounts
	for _, p := range gs.alivePlayers() {
		counts.Alive++
		if p.Role != nil && p.Role.Alignment == AlignmentMafia {
			counts.Mafia++
		} else {
			counts.NonMafia++
		}
	}

	switch {
	case counts.Mafia > 0 && counts.Mafia >= counts.NonMafia:
		return &WinResult{Winner: WinnerMafia, Reason: ReasonMafiaMajority, Counts: counts}
	case counts.Mafia == 0:
		return &WinResult{Winner: WinnerTown, Reason: ReasonMafiaEliminated, Counts: counts}
	default:
		return nil
	}
}

// endGame 是终态：结果一经写入不再变化
func (e *Engine) endGame(gs *GameState, result *WinResult) {
	if gs.GameOver {
		return
	}

	gs.Phase = PhaseEnded
	gs.DayStep = DayStepNone
	gs.GameOver = true
	gs.Result = result
	gs.Vote.Open = false
	gs.Night = nil

	e.emit(gs, GameEnded{
		Round:  gs.Round,
		Winner: result.Winner,
		Reason: result.Reason,
		Counts: result.Counts,
	})

	zap.L().Info(
		"游戏结束",
		zap.String("winner", result.Winner),
		zap.String("reason", result.Reason),
		zap.Int("round", gs.Round),
	)
}
