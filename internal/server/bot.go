package server

import (
	"time"

	"cthulhu/internal/game"
)

type botTaskKind int

const (
	botDeclare botTaskKind = iota + 1
	botInvestigate
)

func (k botTaskKind) String() string {
	switch k {
	case botDeclare:
		return "declare"
	case botInvestigate:
		return "investigate"
	default:
		return "unknown"
	}
}

// botTask 記錄排程當下的局面；觸發時局面不同就直接丟棄
type botTask struct {
	kind        botTaskKind
	match       int
	round       int
	phase       game.Phase
	actor       string
	actionsLeft int
}

// scheduleBotsLocked 在每次廣播後替需要行動的機器人排程
func (r *Room) scheduleBotsLocked() {
	s := r.state
	opts := r.hub.opts
	switch s.Phase {
	case game.PhaseDeclaring:
		for i, bot := range s.UndeclaredBots() {
			task := botTask{kind: botDeclare, match: s.Match, round: s.Round, phase: s.Phase, actor: bot.ID}
			r.scheduleLocked(task, opts.BotDeclareDelay+time.Duration(i)*opts.BotDeclareStagger)
		}
	case game.PhaseInvestigating:
		active := s.ActivePlayer()
		if active == nil || !active.IsBot {
			return
		}
		task := botTask{
			kind:        botInvestigate,
			match:       s.Match,
			round:       s.Round,
			phase:       s.Phase,
			actor:       active.ID,
			actionsLeft: s.ActionsLeft,
		}
		r.scheduleLocked(task, opts.BotInvestigateDelay)
	}
}

func (r *Room) scheduleLocked(task botTask, delay time.Duration) {
	if _, ok := r.pending[task]; ok {
		return
	}
	r.pending[task] = struct{}{}
	code := r.code
	time.AfterFunc(delay, func() {
		r.hub.runBotTask(code, task)
	})
}

func (r *Room) runBotTask(task botTask) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pending, task)
	if r.closed || !r.taskCurrentLocked(task) {
		r.logger.Debugw("dropping stale bot task", "kind", task.kind.String(), "bot", task.actor, "round", task.round)
		return
	}

	prev := r.state.Phase
	switch task.kind {
	case botDeclare:
		d, err := r.state.BotDeclaration(task.actor)
		if err == nil {
			err = r.state.Declare(task.actor, d)
		}
		if err != nil {
			r.logger.Warnw("bot declaration rejected", "bot", task.actor, "error", err)
			return
		}
	case botInvestigate:
		target, ok := r.state.BotTarget(task.actor)
		if !ok {
			r.logger.Debugw("bot has nobody to investigate", "bot", task.actor)
			return
		}
		if _, err := r.state.Investigate(task.actor, target); err != nil {
			r.logger.Warnw("bot investigation rejected", "bot", task.actor, "target", target, "error", err)
			return
		}
	}
	r.commitLocked(prev)
}

func (r *Room) taskCurrentLocked(task botTask) bool {
	s := r.state
	if s.Match != task.match || s.Round != task.round || s.Phase != task.phase {
		return false
	}
	switch task.kind {
	case botDeclare:
		p, _ := s.Player(task.actor)
		return p != nil && p.IsBot && p.Declaration == nil
	case botInvestigate:
		active := s.ActivePlayer()
		return active != nil && active.ID == task.actor && s.ActionsLeft == task.actionsLeft
	}
	return false
}
