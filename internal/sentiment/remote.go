/**
* Name: 			remote.go
* Description: 		외부 예측 서버(피클 모델 사이드카) 클라이언트
* Workflow: 		리뷰 텍스트 전송, 클래스 코드 수신
 */

package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

type PredictRequest struct {
	Text string `json:"text"`
}

type PredictResponse struct {
	Prediction int `json:"prediction"`
}

// RemotePredictor asks a prediction server for the class code.
type RemotePredictor struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemotePredictor(baseURL string, timeout time.Duration) *RemotePredictor {
	return &RemotePredictor{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (r *RemotePredictor) Predict(ctx context.Context, text string) (int, error) {
	reqBody, err := json.Marshal(PredictRequest{Text: text})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/predict", bytes.NewReader(reqBody))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.New("prediction server failed with status: " + resp.Status)
	}

	var predResp PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predResp); err != nil {
		return 0, err
	}
	return predResp.Prediction, nil
}
