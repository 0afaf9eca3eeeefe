package api

import (
	"io"
	"net/http"
	"strings"

	"workflowx/pkg"
	"workflowx/src/assistant"
	"workflowx/src/logger"
	"workflowx/src/model"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	var req pkg.ChatRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx := r.Context()
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	log := logger.Component("api").With().Str("session_id", sessionID).Logger()

	dialogCtx := req.DialogContext
	if dialogCtx == nil && s.dialogs != nil {
		stored, err := s.dialogs.Load(ctx, sessionID)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load dialog context")
		}
		dialogCtx = stored
	}

	var opts []assistant.CallOption
	if s.history != nil {
		msgs, err := s.history.History(ctx, sessionID)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load chat history")
		} else if len(msgs) > 0 {
			opts = append(opts, assistant.WithHistory(msgs))
		}
	}

	reply, err := s.assistant.HandleMessage(ctx, req.Message, dialogCtx, opts...)
	if err != nil {
		log.Error().Err(err).Msg("chat failed")
		writeError(w, http.StatusInternalServerError, "request aborted")
		return
	}

	if s.dialogs != nil {
		if err := s.dialogs.Save(ctx, sessionID, reply.DialogContext); err != nil {
			log.Warn().Err(err).Msg("failed to save dialog context")
		}
	}
	if s.history != nil && reply.Intent == model.IntentGeneral {
		if err := s.history.Record(ctx, sessionID, req.Message, reply.Text); err != nil {
			log.Warn().Err(err).Msg("failed to record chat history")
		}
	}

	writeJSON(w, http.StatusOK, pkg.ChatResponse{
		Reply:         reply.Text,
		Intent:        string(reply.Intent),
		SessionID:     sessionID,
		DialogContext: reply.DialogContext,
		AIGenerated:   reply.AIGenerated,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "disabled"
	if s.redis != nil {
		status = "ok"
		if err := s.redis.Ping(r.Context()); err != nil {
			logger.Warn().Err(err).Msg("redis health check failed")
			status = "error"
		}
	}
	writeJSON(w, http.StatusOK, pkg.HealthResponse{OK: true, Redis: status})
}
