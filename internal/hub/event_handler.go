package hub

import (
	"context"
	"ctchen222/tictactoe-rooms/internal/events"
	"ctchen222/tictactoe-rooms/internal/game"
	"ctchen222/tictactoe-rooms/internal/hub/types"
	"ctchen222/tictactoe-rooms/internal/player"
	"ctchen222/tictactoe-rooms/internal/validator"
	"ctchen222/tictactoe-rooms/pkg/proto"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (h *Hub) handleRegister(ctx context.Context, p player.Peer) {
	ctx, span := tracer.Start(ctx, "hub.handleRegister", trace.WithAttributes(
		attribute.String("player.id", p.ID()),
	))
	defer span.End()

	if _, exists := h.sessions[p.ID()]; exists {
		slog.WarnContext(ctx, "Player already registered, ignoring", "player.id", p.ID())
		span.SetStatus(codes.Error, "Player already registered")
		return
	}

	h.sessions[p.ID()] = &session{peer: p}
	h.metrics.sessions.Add(ctx, 1)
	slog.InfoContext(ctx, "Player connected", "player.id", p.ID())

	h.sendRoster(ctx, p)
}

func (h *Hub) handleUnregister(ctx context.Context, p player.Peer) {
	ctx, span := tracer.Start(ctx, "hub.handleUnregister", trace.WithAttributes(
		attribute.String("player.id", p.ID()),
	))
	defer span.End()

	if _, ok := h.sessions[p.ID()]; !ok {
		return
	}
	delete(h.sessions, p.ID())
	h.metrics.sessions.Add(ctx, -1)

	// A player should hold at most one slot, but every room is checked.
	rosterChanged := false
	for _, rm := range h.registry.Rooms() {
		mark := rm.SlotOf(p.ID())
		if mark == game.None {
			continue
		}
		rm = rm.RemovePlayer(p.ID())
		h.registry.Save(rm)
		rosterChanged = true

		if h.registry.DeleteIfEmpty(rm.ID) {
			h.metrics.rooms.Add(ctx, -1)
			slog.InfoContext(ctx, "Room closed due to no players", "room.id", rm.ID)
			h.publish(ctx, events.RoomClosed, events.RoomPayload{RoomID: rm.ID, PlayerID: p.ID(), Mark: mark})
			continue
		}
		slog.InfoContext(ctx, "Player removed from room", "room.id", rm.ID, "player.id", p.ID(), "player.mark", mark)
		h.publish(ctx, events.PlayerLeft, events.RoomPayload{RoomID: rm.ID, PlayerID: p.ID(), Mark: mark})
	}

	slog.InfoContext(ctx, "Player disconnected", "player.id", p.ID())
	if rosterChanged {
		h.broadcastRoster(ctx)
	}
}

func (h *Hub) handleInbound(ctx context.Context, in *types.Inbound) {
	ctx, span := tracer.Start(ctx, "hub.handleInbound", trace.WithAttributes(
		attribute.String("player.id", in.Peer.ID()),
	))
	defer span.End()

	s, ok := h.sessions[in.Peer.ID()]
	if !ok {
		slog.WarnContext(ctx, "Dropping message from unregistered player", "player.id", in.Peer.ID())
		return
	}

	msg, err := validator.DecodeClientMessage(in.Message)
	if err != nil {
		slog.WarnContext(ctx, "Dropping malformed message", "player.id", s.peer.ID(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Malformed message")
		return
	}
	span.SetAttributes(attribute.String("message.event", msg.Event))

	switch msg.Event {
	case proto.EventCreateRoom, proto.EventJoinRoom:
		roomID, err := validator.DecodeRoomID(msg.Payload)
		if err != nil {
			slog.WarnContext(ctx, "Dropping room request", "player.id", s.peer.ID(), "event", msg.Event, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid room id")
			return
		}
		if msg.Event == proto.EventCreateRoom {
			h.handleCreateRoom(ctx, s, roomID)
		} else {
			h.handleJoinRoom(ctx, s, roomID)
		}

	case proto.EventGameEvent:
		ev, err := validator.DecodeGameEvent(msg.Payload)
		if err != nil {
			slog.WarnContext(ctx, "Dropping malformed game event", "player.id", s.peer.ID(), "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Malformed game event")
			return
		}
		h.handleGameEvent(ctx, s, ev)
	}
}

// handleCreateRoom creates the room if it does not exist yet. The requester
// is not seated.
func (h *Hub) handleCreateRoom(ctx context.Context, s *session, roomID string) {
	ctx, span := tracer.Start(ctx, "hub.handleCreateRoom", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.String("player.id", s.peer.ID()),
	))
	defer span.End()

	if _, created := h.registry.GetOrCreate(roomID); !created {
		slog.DebugContext(ctx, "Room already exists", "room.id", roomID)
		return
	}
	h.roomCreated(ctx, roomID)
	h.broadcastRoster(ctx)
}

func (h *Hub) handleJoinRoom(ctx context.Context, s *session, roomID string) {
	ctx, span := tracer.Start(ctx, "hub.handleJoinRoom", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.String("player.id", s.peer.ID()),
	))
	defer span.End()

	if s.joined() {
		if s.roomID != roomID {
			slog.WarnContext(ctx, "Player already in another room", "player.id", s.peer.ID(), "room.id", s.roomID, "requested.room.id", roomID)
			h.reject(ctx, s, proto.ReasonAlreadyJoined)
			return
		}
		rm, _ := h.registry.Get(roomID)
		h.send(ctx, s.peer, proto.NewStateMessage(rm.State))
		h.send(ctx, s.peer, proto.NewAssignmentMessage(rm.ID, s.peer.ID(), rm.SlotOf(s.peer.ID())))
		return
	}

	rm, created := h.registry.GetOrCreate(roomID)
	if created {
		h.roomCreated(ctx, roomID)
	}

	// Admission is decided before the player can see anything of the room.
	if rm.IsFull() {
		slog.InfoContext(ctx, "Join rejected: room is full", "room.id", roomID, "player.id", s.peer.ID())
		h.reject(ctx, s, proto.ReasonRoomFull)
		return
	}

	rm, mark := rm.AddPlayer(s.peer.ID())
	h.registry.Save(rm)
	s.roomID = rm.ID
	span.SetAttributes(attribute.String("player.mark", string(mark)))
	slog.InfoContext(ctx, "Player joined room", "room.id", rm.ID, "player.id", s.peer.ID(), "player.mark", mark)

	h.send(ctx, s.peer, proto.NewStateMessage(rm.State))
	h.send(ctx, s.peer, proto.NewAssignmentMessage(rm.ID, s.peer.ID(), mark))
	h.publish(ctx, events.PlayerJoined, events.RoomPayload{RoomID: rm.ID, PlayerID: s.peer.ID(), Mark: mark})
	h.broadcastRoster(ctx)
}

func (h *Hub) handleGameEvent(ctx context.Context, s *session, ev *proto.GameEvent) {
	ctx, span := tracer.Start(ctx, "hub.handleGameEvent", trace.WithAttributes(
		attribute.String("player.id", s.peer.ID()),
		attribute.String("game_event.type", ev.Type),
	))
	defer span.End()

	if !s.joined() {
		slog.WarnContext(ctx, "No room found for this connection", "player.id", s.peer.ID(), "game_event.type", ev.Type)
		h.reject(ctx, s, proto.ReasonNotJoined)
		return
	}
	span.SetAttributes(attribute.String("room.id", s.roomID))

	rm, ok := h.registry.Get(s.roomID)
	if !ok {
		slog.WarnContext(ctx, "Room not found", "room.id", s.roomID, "player.id", s.peer.ID())
		span.SetStatus(codes.Error, "Room not found")
		return
	}

	switch ev.Type {
	case proto.GameEventMove:
		index, err := validator.DecodeMove(ev.Data)
		if err != nil {
			slog.WarnContext(ctx, "Dropping malformed move", "room.id", rm.ID, "player.id", s.peer.ID(), "error", err)
			h.metrics.move(ctx, outcomeMalformed)
			h.reject(ctx, s, proto.ReasonInvalidMove)
			return
		}

		required := rm.State.CurrentPlayer
		if rm.Holder(required) != s.peer.ID() {
			slog.WarnContext(ctx, "Move rejected: not this player's turn", "room.id", rm.ID, "player.id", s.peer.ID(), "current.player", required)
			h.metrics.move(ctx, outcomeNotYourTurn)
			h.reject(ctx, s, proto.ReasonNotYourTurn)
			return
		}

		next := game.ApplyMove(rm.State, index)
		if next == rm.State {
			slog.InfoContext(ctx, "Move rejected: invalid move", "room.id", rm.ID, "player.id", s.peer.ID(), "move.index", index)
			h.metrics.move(ctx, outcomeInvalid)
			h.reject(ctx, s, proto.ReasonInvalidMove)
			return
		}
		rm.State = next
		h.metrics.move(ctx, outcomeAccepted)
		if next.Over() {
			slog.InfoContext(ctx, "Game over", "room.id", rm.ID, "winner", next.Winner)
		}

	case proto.GameEventReset:
		rm.State = game.Reset()
		slog.InfoContext(ctx, "Game reset", "room.id", rm.ID, "player.id", s.peer.ID())

	default:
		slog.WarnContext(ctx, "Unknown game event type", "room.id", rm.ID, "player.id", s.peer.ID(), "game_event.type", ev.Type)
		h.reject(ctx, s, proto.ReasonUnknownType)
		return
	}

	h.registry.Save(rm)
	h.broadcastState(ctx, rm)
	state := rm.State
	h.publish(ctx, events.StateChanged, events.RoomPayload{RoomID: rm.ID, PlayerID: s.peer.ID(), Mark: rm.SlotOf(s.peer.ID()), State: &state})
}
