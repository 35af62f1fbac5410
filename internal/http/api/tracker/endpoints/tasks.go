package endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/farewatch/farewatch/internal/clock"
	"github.com/farewatch/farewatch/internal/cronexpr"
	"github.com/farewatch/farewatch/internal/db"
	"github.com/farewatch/farewatch/internal/http/api"
	"github.com/farewatch/farewatch/internal/http/api/tracker/packets"
	"github.com/farewatch/farewatch/internal/model"
	"github.com/farewatch/farewatch/internal/scheduler"
)

type TaskController struct {
	store    db.Store
	executor *scheduler.Executor
	clk      clock.Clock
}

func NewTaskController(store db.Store, executor *scheduler.Executor, clk clock.Clock) *TaskController {
	return &TaskController{store: store, executor: executor, clk: clk}
}

func TaskModule(store db.Store, executor *scheduler.Executor, clk clock.Clock) api.Module {
	ctl := NewTaskController(store, executor, clk)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/tasks", ctl.listTasks)
		c.POST("/tasks", ctl.createTask)
		c.GET("/tasks/:id", ctl.getTask)
		c.PUT("/tasks/:id", ctl.updateTask)
		c.PATCH("/tasks/:id/active", ctl.setActive)
		c.DELETE("/tasks/:id", ctl.deleteTask)
		c.POST("/tasks/:id/execute", ctl.executeTask)
		c.GET("/tasks/:id/history", ctl.listHistory)
	})
}

func (t *TaskController) createTask(ctx *gin.Context) (any, *api.APIError) {
	var request packets.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.Errf(http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	}

	if apiErr := validateRoute(request.Origin, request.Destination); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := validateDateExpr(request.DepartureDate); apiErr != nil {
		return nil, apiErr
	}
	if request.ReturnDate != nil && *request.ReturnDate != "" {
		if apiErr := validateDateExpr(*request.ReturnDate); apiErr != nil {
			return nil, apiErr
		}
	}
	if apiErr := validateCron(request.CronExpr); apiErr != nil {
		return nil, apiErr
	}

	passengers := request.Passengers
	if passengers <= 0 {
		passengers = 1
	}
	cabin := request.CabinClass
	if cabin == "" {
		cabin = "ECONOMY"
	}

	now := t.clk.Now()
	task, err := t.store.CreateTask(model.ScheduledTask{
		Name:          request.Name,
		Origin:        normalizeCode(request.Origin),
		Destination:   normalizeCode(request.Destination),
		DepartureDate: request.DepartureDate,
		ReturnDate:    request.ReturnDate,
		Passengers:    passengers,
		CabinClass:    cabin,
		CronExpr:      request.CronExpr,
		PriceTarget:   request.PriceTarget,
		Active:        true,
		NextRun:       cronexpr.Next(request.CronExpr, now),
	})
	if err != nil {
		return nil, api.Errf(http.StatusInternalServerError, "STORE_ERROR", "could not create task")
	}
	return task, nil
}

func (t *TaskController) listTasks(ctx *gin.Context) (any, *api.APIError) {
	tasks, err := t.store.ListTasks()
	if err != nil {
		return nil, api.Errf(http.StatusInternalServerError, "STORE_ERROR", "failed to list tasks")
	}
	return packets.TaskListResponse{Tasks: tasks}, nil
}

func (t *TaskController) getTask(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	task, err := t.store.GetTask(id)
	if err != nil {
		return nil, taskLookupError(err)
	}
	return task, nil
}

func (t *TaskController) updateTask(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	task, err := t.store.GetTask(id)
	if err != nil {
		return nil, taskLookupError(err)
	}

	var request packets.UpdateTaskRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.Errf(http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	}

	if request.Name != nil {
		task.Name = *request.Name
	}
	if request.Origin != nil {
		task.Origin = normalizeCode(*request.Origin)
	}
	if request.Destination != nil {
		task.Destination = normalizeCode(*request.Destination)
	}
	if request.DepartureDate != nil {
		task.DepartureDate = *request.DepartureDate
	}
	if request.ReturnDate != nil {
		task.ReturnDate = request.ReturnDate
	}
	if request.Passengers != nil {
		task.Passengers = *request.Passengers
	}
	if request.CabinClass != nil {
		task.CabinClass = *request.CabinClass
	}
	if request.PriceTarget != nil {
		task.PriceTarget = request.PriceTarget
	}
	if request.CronExpr != nil && *request.CronExpr != task.CronExpr {
		if apiErr := validateCron(*request.CronExpr); apiErr != nil {
			return nil, apiErr
		}
		task.CronExpr = *request.CronExpr
		task.NextRun = cronexpr.Next(task.CronExpr, t.clk.Now())
	}

	if apiErr := validateRoute(task.Origin, task.Destination); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := validateDateExpr(task.DepartureDate); apiErr != nil {
		return nil, apiErr
	}

	if err := t.store.UpdateTask(task); err != nil {
		return nil, api.Errf(http.StatusInternalServerError, "STORE_ERROR", "could not update task")
	}
	return task, nil
}

func (t *TaskController) setActive(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.SetTaskActiveRequest
	if err := ctx.ShouldBindJSON(&request); err != nil || request.Active == nil {
		return nil, api.Errf(http.StatusBadRequest, "INVALID_REQUEST", "active flag is required")
	}
	if _, err := t.store.GetTask(id); err != nil {
		return nil, taskLookupError(err)
	}
	if err := t.store.SetTaskActive(id, *request.Active); err != nil {
		return nil, api.Errf(http.StatusInternalServerError, "STORE_ERROR", "could not update task")
	}
	return gin.H{"id": id, "active": *request.Active}, nil
}

func (t *TaskController) deleteTask(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if _, err := t.store.GetTask(id); err != nil {
		return nil, taskLookupError(err)
	}
	if err := t.store.DeleteTask(id); err != nil {
		return nil, api.Errf(http.StatusInternalServerError, "STORE_ERROR", "could not delete task")
	}
	return packets.DeletedResponse{Deleted: true}, nil
}

// executeTask runs one task immediately, outside its cadence. A failed run
// surfaces its specific error code so the caller can render it precisely.
func (t *TaskController) executeTask(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	result := t.executor.ExecuteOne(ctx.Request.Context(), id)
	if result.ErrorCode == "TASK_NOT_FOUND" {
		return nil, api.Errf(http.StatusNotFound, result.ErrorCode, result.Error)
	}
	return result, nil
}

func (t *TaskController) listHistory(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if _, err := t.store.GetTask(id); err != nil {
		return nil, taskLookupError(err)
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	history, err := t.store.ListPriceHistory(id, limit)
	if err != nil {
		return nil, api.Errf(http.StatusInternalServerError, "STORE_ERROR", "failed to list price history")
	}
	return packets.HistoryResponse{TaskID: id, History: history}, nil
}

func pathID(ctx *gin.Context) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, api.Errf(http.StatusBadRequest, "INVALID_ID", "invalid id")
	}
	return id, nil
}

func taskLookupError(err error) *api.APIError {
	if errors.Is(err, sql.ErrNoRows) {
		return api.Errf(http.StatusNotFound, "TASK_NOT_FOUND", "task not found")
	}
	return api.Errf(http.StatusInternalServerError, "STORE_ERROR", "task lookup failed")
}
