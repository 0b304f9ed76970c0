package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskRecommenderPass = "actions.recommender_pass"

type RecommenderPassPayload struct {
	Email string `json:"email"`
}

func NewRecommenderPassTask(payload RecommenderPassPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecommenderPass, data), nil
}

func ParseRecommenderPassPayload(task *asynq.Task) (RecommenderPassPayload, error) {
	var payload RecommenderPassPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RecommenderPassPayload{}, err
	}
	return payload, nil
}
