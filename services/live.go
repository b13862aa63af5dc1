package services

import (
	"context"

	"github.com/Dosada05/nations-cup/brackets"
	"github.com/Dosada05/nations-cup/models"
)

// LiveBroadcaster pushes results and stage changes to websocket rooms.
type LiveBroadcaster struct {
	hub *brackets.Hub
}

func NewLiveBroadcaster(hub *brackets.Hub) *LiveBroadcaster {
	return &LiveBroadcaster{hub: hub}
}

func (b *LiveBroadcaster) OnMatchCompleted(ctx context.Context, event MatchCompletedEvent) error {
	room := brackets.RoomID(event.TournamentID.String())
	b.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    brackets.MessageMatchCompleted,
		Payload: event.Match,
		RoomID:  room,
	})
	return nil
}

func (b *LiveBroadcaster) OnStageAdvanced(ctx context.Context, transition StageTransition) error {
	msgType := brackets.MessageStageAdvanced
	if transition.From == models.TournamentNotStarted {
		msgType = brackets.MessageBracketSeeded
	}
	room := brackets.RoomID(transition.TournamentID.String())
	b.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    msgType,
		Payload: transition,
		RoomID:  room,
	})
	return nil
}
