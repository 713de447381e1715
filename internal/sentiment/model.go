/**
* Name: 			model.go
* Description: 		학습된 TF-IDF 벡터라이저 + 선형 분류기 (JSON export)
* Workflow: 		텍스트 토큰화, TF-IDF 벡터 변환, 결정 함수로 클래스 예측
 */

package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
)

// Runs of two or more word characters, the default scikit-learn token pattern.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Model is a frozen vectorizer and linear classifier exported from the
// trained scikit-learn pipeline. It is never mutated after Load.
type Model struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NgramRange  [2]int         `json:"ngram_range"`
	Lowercase   bool           `json:"lowercase"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
	Coef        []float64      `json:"coef"`
	Intercept   float64        `json:"intercept"`
	Classes     [2]int         `json:"classes"`
}

// LoadModel reads and checks a model artifact.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadModel(): failed to read %s: %w", path, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("LoadModel(): failed to decode %s: %w", path, err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("LoadModel(): %s: %w", path, err)
	}
	return &m, nil
}

func (m *Model) check() error {
	dim := len(m.Coef)
	if dim == 0 {
		return fmt.Errorf("model has no coefficients")
	}
	if len(m.IDF) != dim {
		return fmt.Errorf("idf has %d entries, coef has %d", len(m.IDF), dim)
	}
	for term, col := range m.Vocabulary {
		if col < 0 || col >= dim {
			return fmt.Errorf("term %q maps to column %d outside [0,%d)", term, col, dim)
		}
	}
	if m.NgramRange == [2]int{} {
		m.NgramRange = [2]int{1, 1}
	}
	if m.NgramRange[0] < 1 || m.NgramRange[1] < m.NgramRange[0] {
		return fmt.Errorf("invalid ngram_range %v", m.NgramRange)
	}
	if m.Classes == [2]int{} {
		m.Classes = [2]int{0, 1}
	}
	if m.Norm != "" && m.Norm != "l2" {
		return fmt.Errorf("unsupported norm %q", m.Norm)
	}
	return nil
}

// Dim is the length of the vectors Transform produces.
func (m *Model) Dim() int {
	return len(m.Coef)
}

// Transform maps text to its sparse TF-IDF vector (column -> weight).
func (m *Model) Transform(text string) map[int]float64 {
	if m.Lowercase {
		text = strings.ToLower(text)
	}
	tokens := tokenPattern.FindAllString(text, -1)

	counts := make(map[int]float64)
	for n := m.NgramRange[0]; n <= m.NgramRange[1]; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if col, ok := m.Vocabulary[strings.Join(tokens[i:i+n], " ")]; ok {
				counts[col]++
			}
		}
	}

	var sumSq float64
	for col, tf := range counts {
		if m.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		w := tf * m.IDF[col]
		counts[col] = w
		sumSq += w * w
	}
	if m.Norm == "l2" && sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for col := range counts {
			counts[col] /= norm
		}
	}
	return counts
}

// Decision is the signed distance from the separating hyperplane.
func (m *Model) Decision(x map[int]float64) float64 {
	score := m.Intercept
	for col, w := range x {
		score += m.Coef[col] * w
	}
	return score
}

// Predict returns the class code for text.
func (m *Model) Predict(_ context.Context, text string) (int, error) {
	if m.Decision(m.Transform(text)) > 0 {
		return m.Classes[1], nil
	}
	return m.Classes[0], nil
}
