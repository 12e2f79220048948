package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// notifyStage sends the completion SMS for a task that reached a terminal
// status. The SMS outcome is recorded on the task but never changes the
// task's status; a delivery failure is not a pipeline failure.
func (p *Pipeline) notifyStage(ctx context.Context, log *zap.Logger, taskID string) {
	task, ok := p.store.Get(taskID)
	if !ok {
		return
	}

	switch task.Status {
	case model.TaskStatusNoResults, model.TaskStatusNoEmails, model.TaskStatusLeadsFound:
	default:
		return
	}

	if task.Phone == "" {
		p.recordNotification(taskID, model.Notification{Status: model.NotificationSkipped})
		return
	}
	if p.notifier == nil {
		log.Info("pipeline: SMS not configured, skipping notification")
		p.recordNotification(taskID, model.Notification{Status: model.NotificationNotConfigured})
		return
	}

	body := p.notificationBody(task)
	msg, err := p.notifier.Send(ctx, task.Phone, body)
	if err != nil {
		log.Warn("pipeline: SMS send failed", zap.Error(err))
		p.recordNotification(taskID, model.Notification{
			Status: model.NotificationFailedToSend,
			Error:  err.Error(),
		})
		return
	}

	log.Info("pipeline: SMS sent", zap.String("sid", msg.SID))
	p.recordNotification(taskID, model.Notification{
		Status: model.NotificationSent,
		SID:    msg.SID,
	})
}

// notificationBody picks the message wording by outcome. Both variants carry
// the results link so the recipient can confirm the run either way.
func (p *Pipeline) notificationBody(task *model.Task) string {
	link := fmt.Sprintf("%s/leads.html?id=%s", p.cfg.Pipeline.LeadsBaseURL, task.ID)
	if task.Status == model.TaskStatusLeadsFound {
		return fmt.Sprintf("Your leads request is complete! View your leads here: %s", link)
	}
	return fmt.Sprintf("Your leads request is complete, but no matching leads were found. Details here: %s", link)
}

func (p *Pipeline) recordNotification(taskID string, n model.Notification) {
	if err := p.store.Update(taskID, func(t *model.Task) {
		t.Notification = n
	}); err != nil {
		zap.L().Error("pipeline: notification record failed",
			zap.String("task_id", taskID), zap.Error(err))
	}
}
