package videoroom

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/contracts"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/dto/responses"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	videoRoomServiceInstance contracts.VideoRoomService
	onceVideoRoomService     sync.Once
)

type videoRoomService struct {
	BaseUrl    string
	ApiKey     string
	HTTPClient *http.Client
	Log        *zap.Logger
}

func NewVideoRoomService(internalConfig *config.InternalConfig, logger *zap.Logger) contracts.VideoRoomService {
	onceVideoRoomService.Do(func() {
		timeout := time.Duration(internalConfig.VideoRoom.RequestTimeoutInSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		videoRoomServiceInstance = &videoRoomService{
			BaseUrl:    strings.TrimRight(internalConfig.VideoRoom.BaseUrl, "/"),
			ApiKey:     internalConfig.VideoRoom.ApiKey,
			HTTPClient: &http.Client{Timeout: timeout},
			Log:        logger,
		}
	})
	return videoRoomServiceInstance
}

// CreateRoom provisions a room and returns its join URL. Creating an existing room returns it again.
func (s *videoRoomService) CreateRoom(ctx context.Context, name string) (string, error) {
	requestID := utils.RequestIDFromContext(ctx)
	s.Log.Info("videoRoomService.CreateRoom called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("room_name", name),
	)

	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return "", exceptions.ErrCannotMarshalJSON(err)
	}

	url := s.BaseUrl + "/rooms"
	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	req.Header.Set(constvars.HeaderAuthorization, "Bearer "+s.ApiKey)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		s.Log.Error("videoRoomService.CreateRoom error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return "", exceptions.ErrVideoRoomCreate(err, name)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", exceptions.ErrVideoRoomCreate(err, name)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", exceptions.ErrVideoRoomCreate(fmt.Errorf("unexpected HTTP status %d", resp.StatusCode), name)
	}

	var room responses.VideoRoom
	if err := json.Unmarshal(bodyBytes, &room); err != nil {
		return "", exceptions.ErrDecodeHTTPResponse(err, url)
	}
	if room.URL == "" {
		return "", exceptions.ErrVideoRoomCreate(fmt.Errorf("empty room url"), name)
	}

	s.Log.Info("videoRoomService.CreateRoom succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("room_name", room.Name),
	)
	return room.URL, nil
}
