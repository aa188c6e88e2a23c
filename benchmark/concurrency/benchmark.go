// Dual-scorer load generator: every worker plays both scorers of a match,
// submitting matching entries for its own range of deliveries so each pair
// of requests races to complete a majority. Useful for confirming that
// exactly one official ball materializes per delivery under load.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

type SubmitResponse struct {
	EntryID          string `json:"entry_id"`
	Status           string `json:"verification_status"`
	ConsensusReached bool   `json:"consensus_reached"`
}

type DeliveryResult struct {
	Success  bool
	Verified bool
	Latency  time.Duration
	ErrorMsg string
}

func main() {
	workers := flag.Int("workers", 10, "Number of concurrent scorer pairs")
	duration := flag.Int("duration", 30, "Test duration in seconds")
	port := flag.String("port", "8080", "Service port")
	matchID := flag.String("match", "MCH-001", "Match ID to score against")
	scorerA := flag.String("scorer-a", "USR-001", "Team A scorer user ID")
	scorerB := flag.String("scorer-b", "USR-002", "Team B scorer user ID")
	appointedBy := flag.String("appointer", "USR-005", "Appointing user ID")
	flag.Parse()

	recordsDir := "./records"
	os.MkdirAll(recordsDir, 0755)

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(recordsDir, fmt.Sprintf(
		"concurrency_%s_w%d_d%ds.csv",
		timestamp, *workers, *duration,
	))

	fmt.Println("========================================")
	fmt.Println("   DUAL-SCORER CONCURRENCY BENCHMARK")
	fmt.Println("========================================")
	fmt.Printf("Workers:    %d\n", *workers)
	fmt.Printf("Duration:   %ds\n", *duration)
	fmt.Printf("Target:     http://127.0.0.1:%s\n", *port)
	fmt.Printf("Match ID:   %s\n", *matchID)
	fmt.Printf("Output:     %s\n", filename)
	fmt.Println("========================================")
	fmt.Println("")

	baseURL := fmt.Sprintf("http://127.0.0.1:%s", *port)

	// Assign the scorer pair once before the load starts.
	setup := newScoringClient(baseURL)
	if err := setup.AssignScorers(*matchID, *scorerA, *scorerB, *appointedBy); err != nil {
		fmt.Printf("Scorer assignment failed: %v\n", err)
		return
	}

	stopChan := make(chan struct{})
	resultsChan := make(chan DeliveryResult, *workers*10)

	var totalReqs int64
	var successReqs int64
	var failedReqs int64
	var verifiedBalls int64
	var totalLatency int64
	var minLatency int64 = 1<<63 - 1
	var maxLatency int64 = 0

	var wg sync.WaitGroup

	fmt.Println("Starting workers...")
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go worker(i, baseURL, *matchID, *scorerA, *scorerB, stopChan, resultsChan, &wg)
	}

	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for result := range resultsChan {
			atomic.AddInt64(&totalReqs, 1)

			if result.Success {
				atomic.AddInt64(&successReqs, 1)
				if result.Verified {
					atomic.AddInt64(&verifiedBalls, 1)
				}
				latencyNs := result.Latency.Nanoseconds()
				atomic.AddInt64(&totalLatency, latencyNs)

				for {
					old := atomic.LoadInt64(&minLatency)
					if latencyNs >= old || atomic.CompareAndSwapInt64(&minLatency, old, latencyNs) {
						break
					}
				}

				for {
					old := atomic.LoadInt64(&maxLatency)
					if latencyNs <= old || atomic.CompareAndSwapInt64(&maxLatency, old, latencyNs) {
						break
					}
				}
			} else {
				atomic.AddInt64(&failedReqs, 1)
			}
		}
	}()

	startTime := time.Now()
	fmt.Printf("Running benchmark for %d seconds...\n", *duration)
	time.Sleep(time.Duration(*duration) * time.Second)

	close(stopChan)
	wg.Wait()
	close(resultsChan)
	collectorWg.Wait()

	elapsed := time.Since(startTime)

	tps := float64(totalReqs) / elapsed.Seconds()
	avgLatency := time.Duration(0)
	if successReqs > 0 {
		avgLatency = time.Duration(totalLatency / successReqs)
	}

	fmt.Println("\n========================================")
	fmt.Println("   BENCHMARK RESULTS")
	fmt.Println("========================================")
	fmt.Printf("Total Deliveries:  %d\n", totalReqs)
	fmt.Printf("Successful:        %d (%.2f%%)\n", successReqs, float64(successReqs)/float64(totalReqs)*100)
	fmt.Printf("Failed:            %d (%.2f%%)\n", failedReqs, float64(failedReqs)/float64(totalReqs)*100)
	fmt.Printf("Verified Balls:    %d\n", verifiedBalls)
	fmt.Printf("Duration:          %v\n", elapsed)
	fmt.Printf("Throughput (TPS):  %.2f\n", tps)
	fmt.Printf("Avg Latency:       %v\n", avgLatency)
	fmt.Printf("Min Latency:       %v\n", time.Duration(minLatency))
	fmt.Printf("Max Latency:       %v\n", time.Duration(maxLatency))
	fmt.Println("========================================")

	file, err := os.Create(filename)
	if err != nil {
		fmt.Printf("Error creating file: %v\n", err)
		return
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{
		"Workers", "Duration_s",
		"Total_Deliveries", "Successful", "Failed", "Verified_Balls",
		"TPS", "Avg_Latency_ms", "Min_Latency_ms", "Max_Latency_ms",
	})

	writer.Write([]string{
		fmt.Sprintf("%d", *workers),
		fmt.Sprintf("%d", *duration),
		fmt.Sprintf("%d", totalReqs),
		fmt.Sprintf("%d", successReqs),
		fmt.Sprintf("%d", failedReqs),
		fmt.Sprintf("%d", verifiedBalls),
		fmt.Sprintf("%.2f", tps),
		fmt.Sprintf("%.2f", float64(avgLatency.Milliseconds())),
		fmt.Sprintf("%.2f", float64(time.Duration(minLatency).Milliseconds())),
		fmt.Sprintf("%.2f", float64(time.Duration(maxLatency).Milliseconds())),
	})

	fmt.Printf("\nResults saved to: %s\n", filename)
}

// worker scores deliveries in its own over range so keys never collide
// across workers. Both scorers of the pair submit concurrently.
func worker(id int, baseURL, matchID, scorerA, scorerB string, stopChan chan struct{}, resultsChan chan DeliveryResult, wg *sync.WaitGroup) {
	defer wg.Done()

	clientA := newScoringClient(baseURL)
	clientB := newScoringClient(baseURL)

	delivery := 0
	for {
		select {
		case <-stopChan:
			return
		default:
			over := id*1_000_000 + delivery/6 + 1
			ball := delivery%6 + 1
			delivery++

			start := time.Now()
			verified, err := scoreDelivery(clientA, clientB, matchID, scorerA, scorerB, over, ball)
			latency := time.Since(start)

			result := DeliveryResult{
				Success:  err == nil,
				Verified: verified,
				Latency:  latency,
			}
			if err != nil {
				result.ErrorMsg = err.Error()
			}

			resultsChan <- result
		}
	}
}

// scoreDelivery fires both scorers' matching entries at once and reports
// whether either response carried the consensus verdict.
func scoreDelivery(clientA, clientB *scoringClient, matchID, scorerA, scorerB string, over, ball int) (bool, error) {
	entry := func(scorerID string) ballEntryRequest {
		return ballEntryRequest{
			ScorerID:   scorerID,
			Innings:    1,
			OverNumber: over,
			BallNumber: ball,
			BowlerID:   "USR-003",
			StrikerID:  "USR-004",
			Runs:       1,
			BallType:   "legal",
		}
	}

	type reply struct {
		verified bool
		err      error
	}
	replies := make(chan reply, 2)

	submit := func(client *scoringClient, scorerID string) {
		result, err := client.SubmitBall(matchID, entry(scorerID))
		if err != nil {
			replies <- reply{err: err}
			return
		}
		replies <- reply{verified: result.ConsensusReached}
	}

	go submit(clientA, scorerA)
	go submit(clientB, scorerB)

	verified := false
	for i := 0; i < 2; i++ {
		r := <-replies
		if r.err != nil {
			return false, r.err
		}
		if r.verified {
			verified = true
		}
	}

	return verified, nil
}
