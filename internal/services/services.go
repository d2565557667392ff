package services

import (
	"context"
	"log"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/db"
	"github.com/taskdeck/taskdeck/internal/identity"
	"github.com/taskdeck/taskdeck/internal/session"
	task2 "github.com/taskdeck/taskdeck/internal/services/task"
	user2 "github.com/taskdeck/taskdeck/internal/services/user"
)

type Services struct {
	Task     *task2.TaskService
	User     *user2.UserService
	Sessions session.Store
}

func NewServices(conf *config.Config) *Services {
	dbconn := db.NewConn(conf)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     conf.REDIS_ADDR,
		Password: conf.REDIS_PASSWORD,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalln("Unable to connect to redis", err.Error())
	}
	slog.Info("Connected to redis")

	gateway, err := identity.NewCognitoGateway(context.Background(), conf)
	if err != nil {
		log.Fatalln("Unable to create identity gateway", err.Error())
	}

	return &Services{
		Task:     task2.NewTaskService(task2.NewTaskRepo(dbconn)),
		User:     user2.NewUserService(user2.NewUserRepo(dbconn), gateway),
		Sessions: session.NewRedisStore(redisClient),
	}
}
