//go:build verify
// +build verify

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"slidecast/pkg/voicevox"
)

func main() {
	serverURL := os.Getenv("DEFAULT_VOICEVOX_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://127.0.0.1:50021"
	}

	client := voicevox.NewClient(serverURL, 1)
	ctx := context.Background()

	raw, err := client.ListSpeakers(ctx)
	if err != nil {
		log.Fatalf("list speakers failed: %v", err)
	}
	var pretty json.RawMessage = raw
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		log.Fatalf("speakers response is not valid JSON: %v", err)
	}
	fmt.Printf("speaker catalog:\n%s\n", out)

	voiceIDs := []int{
		1,  // ずんだもん
		2,  // 四国めたん
		3,  // 春日部つむぎ
		14, // known good
	}

	for _, id := range voiceIDs {
		fmt.Printf("Testing voice id: %d ... ", id)
		v := id
		path := fmt.Sprintf("test_voice_%d.wav", id)
		res, err := client.Synthesize(ctx, "こんにちは、テスト音声です。", &v, path)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
		} else {
			fmt.Printf("SUCCESS (%.2fs)\n", res.Duration.Seconds())
			os.Remove(path)
		}
	}
}
