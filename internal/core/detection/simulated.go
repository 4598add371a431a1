package detection

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// simulatedVocabulary 模擬辨識的候選食材
var simulatedVocabulary = []string{"tomatoes", "onions", "potatoes", "carrots", "rice", "lentils"}

// SimulatedDetector 展示用的假辨識器，隨機挑選 3 到 5 項不重複食材
type SimulatedDetector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedDetector 創建模擬辨識器
func NewSimulatedDetector() *SimulatedDetector {
	return NewSimulatedDetectorWithSeed(time.Now().UnixNano())
}

// NewSimulatedDetectorWithSeed 以固定種子創建，測試用
func NewSimulatedDetectorWithSeed(seed int64) *SimulatedDetector {
	return &SimulatedDetector{rng: rand.New(rand.NewSource(seed))}
}

// Detect 忽略圖片內容
func (d *SimulatedDetector) Detect(ctx context.Context, _ []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return []string{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	count := 3 + d.rng.Intn(3)
	perm := d.rng.Perm(len(simulatedVocabulary))
	items := make([]string, 0, count)
	for _, i := range perm[:count] {
		items = append(items, simulatedVocabulary[i])
	}
	return items, nil
}
