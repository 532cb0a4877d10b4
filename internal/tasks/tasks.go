package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/suddernpy/resq/internal/config"
)

// TaskType defines the type of a background task.
const (
	TypeRetentionSweep = "listing:retention:sweep"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// EnqueueRetentionSweep schedules the first sweep; each run re-enqueues
// the next one, so this is called once at startup.
func EnqueueRetentionSweep(client *asynq.Client, delay time.Duration) error {
	task := asynq.NewTask(TypeRetentionSweep, nil)
	_, err := client.Enqueue(task, asynq.ProcessIn(delay), asynq.Queue("default"))
	if err != nil {
		return fmt.Errorf("failed to enqueue retention sweep: %w", err)
	}
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg        *config.Config
	db         *mongo.Database
	taskClient *asynq.Client
}

func NewTaskProcessor(cfg *config.Config, database *mongo.Database, taskClient *asynq.Client) *TaskProcessor {
	return &TaskProcessor{
		cfg:        cfg,
		db:         database,
		taskClient: taskClient,
	}
}

// SetupServer configures and returns an Asynq server instance with the
// background handlers registered, started on the calling goroutine's
// behalf via Run.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) *asynq.Server {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"default": 3,
				"low":     1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				fmt.Printf("[Asynq Error] Task Type: %s, Error: %v\n", task.Type(), err)
			}),
		},
	)

	return srv
}

// NewMux registers the background task handlers.
func NewMux(processor *TaskProcessor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRetentionSweep, processor.HandleRetentionSweepTask)
	return mux
}

// HandleRetentionSweepTask purges listings that have been cleared or
// expired for longer than the retirement grace window. Visibility never
// depends on this sweep (projections derive it on every read); the sweep
// only bounds how long retired rows linger for audit. The resulting
// delete events flow back into every running instance's listing store
// through the change feed.
func (p *TaskProcessor) HandleRetentionSweepTask(ctx context.Context, t *asynq.Task) error {
	collection := p.db.Collection(p.cfg.ListingsCollection)
	cutoff := time.Now().UTC().Add(-p.cfg.RetirementGrace)

	filter := bson.M{
		"$or": bson.A{
			bson.M{"cleared": true, "cleared_at": bson.M{"$lt": cutoff}},
			bson.M{"expires_at": bson.M{"$ne": nil, "$lt": cutoff}},
		},
	}

	result, err := collection.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("retention sweep delete failed: %w", err)
	}
	if result.DeletedCount > 0 {
		log.Printf("Retention sweep purged %d retired listing(s).", result.DeletedCount)
	}

	// Re-enqueue the next sweep
	taskInfo, err := p.taskClient.EnqueueContext(ctx, t, asynq.ProcessIn(p.cfg.SweepInterval))
	if err != nil {
		log.Printf("ERROR failed to re-enqueue retention sweep: %v", err)
		return err
	}
	log.Printf("Retention sweep done. Re-enqueued task %s to run in %v.", taskInfo.ID, p.cfg.SweepInterval)
	return nil
}
