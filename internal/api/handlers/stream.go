package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"github.com/pitchscoop/pitchscoop-backend/internal/services"
)

type transcriptFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// RecordingStream handles one websocket ingest connection. Text frames carry
// transcript segments as JSON; binary frames carry raw audio bytes.
func RecordingStream(svc *services.Services, conn *websocket.Conn) {
	sessionID := conn.Params("id")
	eventID := conn.Query("event_id")
	ctx := context.Background()

	log := logrus.WithFields(logrus.Fields{
		"event_id":   eventID,
		"session_id": sessionID,
	})

	if err := svc.Recording.BeginStream(ctx, eventID, sessionID); err != nil {
		log.WithError(err).Warn("stream rejected")
		conn.WriteJSON(map[string]interface{}{"success": false, "error": err.Error()})
		conn.Close()
		return
	}
	defer func() {
		svc.Recording.EndStream(sessionID)
		conn.Close()
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		switch messageType {
		case websocket.TextMessage:
			var frame transcriptFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				conn.WriteJSON(map[string]interface{}{"success": false, "error": "invalid frame"})
				continue
			}
			if frame.Type != "transcript" {
				continue
			}
			if err := svc.Recording.AppendTranscript(ctx, eventID, sessionID, frame.Text); err != nil {
				log.WithError(err).Warn("transcript frame rejected")
				conn.WriteJSON(map[string]interface{}{"success": false, "error": err.Error()})
				return
			}
		case websocket.BinaryMessage:
			if err := svc.Recording.AppendAudio(ctx, eventID, sessionID, data); err != nil {
				log.WithError(err).Warn("audio frame rejected")
				conn.WriteJSON(map[string]interface{}{"success": false, "error": err.Error()})
				return
			}
		}
	}
}
