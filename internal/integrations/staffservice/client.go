package staffservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы со StaffService (справочник мастеров)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента StaffService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetStylist получает мастера с рабочими часами
func (c *Client) GetStylist(ctx context.Context, stylistID int64) (*domain.Stylist, error) {
	url := fmt.Sprintf("%s/internal/stylists/%d", c.baseURL, stylistID)

	var stylist Stylist
	found, err := c.get(ctx, url, &stylist)
	if err != nil {
		c.log.Error("StaffService: failed to get stylist id=%d: %v", stylistID, err)
		return nil, err
	}
	if !found {
		return nil, ErrStylistNotFound
	}

	result, err := stylist.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return result, nil
}

// GetActiveStylists получает активных мастеров
func (c *Client) GetActiveStylists(ctx context.Context) ([]*domain.Stylist, error) {
	url := fmt.Sprintf("%s/internal/stylists?active=true", c.baseURL)

	var stylists []Stylist
	if _, err := c.get(ctx, url, &stylists); err != nil {
		c.log.Error("StaffService: failed to list active stylists: %v", err)
		return nil, err
	}

	result := make([]*domain.Stylist, 0, len(stylists))
	for i := range stylists {
		s, err := stylists[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		result = append(result, s)
	}
	return result, nil
}

// get выполняет GET и декодирует ответ; found=false при 404
func (c *Client) get(ctx context.Context, url string, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return true, nil
}
