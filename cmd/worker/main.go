package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/cache"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/forecast"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/repository"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/worker"
	"github.com/wneessen/go-mail"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}
	if cfg.Email.SMTP.Host == "" {
		logger.Error("未配置 SMTP 服务器")
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer pingCancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 训练需求预测模型
	 **********************************************/
	records, err := repo.GetAllMonthlyRecords()
	if err != nil {
		logger.Error("无法读取月度销售数据", "error", err)
		return
	}

	predictor, err := forecast.NewPredictor(records, cfg.Forecast.Ridge)
	if err != nil {
		logger.Error("无法训练需求预测模型", "error", err)
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer rdb.Close()

	forecaster := cache.NewForecaster(
		rdb,
		predictor,
		time.Duration(cfg.Forecast.CacheTTL)*time.Second,
		time.Duration(cfg.Redis.OperationExpiration)*time.Second,
	)

	// worker 也重新训练了模型，清除其他进程按旧数据写入的缓存
	invalidateCtx, invalidateCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.OperationExpiration)*time.Second)
	defer invalidateCancel()
	if err := forecaster.Invalidate(invalidateCtx); err != nil {
		logger.Warn("无法清除预测缓存", "error", err)
	}

	processor := worker.NewProcessor(repo, forecaster, domain.DefaultRoutes, &optimizer.Parameters{
		PopulationSize: cfg.Optimizer.PopulationSize,
		Generations:    cfg.Optimizer.Generations,
		MutationRate:   cfg.Optimizer.MutationRate,
	}, cfg.Optimizer.MaxWorkers)

	tmpl, err := template.ParseFiles("./templates/optimization_report_email.html")
	if err != nil {
		logger.Error("无法解析邮件模板", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
		mail.WithTimeout(time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.Queue, // 队列名称
		true,               // 是否持久化
		false,              // 是否自动删除
		false,              // 是否独占
		false,              // 是否不等待
		nil,                // 额外参数
	)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 一次只取一个任务，任务内部已经是并发的
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("无法设置预取数量", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，由 RabbitMQ 自动分配
		false,  // 手动确认
		false,  // 是否独占队列
		false,  // RabbitMQ 不支持 no-local
		false,  // 是否不等待
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Warn("消息通道已关闭")
					return
				}
				logger.Info("收到优化任务", slog.String("message", string(msg.Body)))

				job := domain.OptimizationJob{}
				if err := json.Unmarshal(msg.Body, &job); err != nil {
					logger.Error("任务反序列化失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				start := time.Now()
				report, err := processor.Process(ctx, &job)
				if err != nil {
					logger.Error("优化任务执行失败", slog.String("category", job.Category), slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // 将消息重新入队
					continue
				}
				logger.Info("优化任务完成",
					slog.String("category", job.Category),
					slog.Int("outcomes", len(report.Outcomes)),
					slog.Int("failures", len(report.Failures)),
					slog.Duration("duration", time.Since(start)),
				)

				m, err := worker.BuildReportMsg(cfg.Email.SMTP.Username, job.Email, tmpl, report)
				if err != nil {
					logger.Error("无法构建邮件", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(m); err != nil {
					logger.Error("邮件发送失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // 将消息重新入队
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("等待优化任务...（按 CTRL+C 退出）")
	<-sigChan

	slog.Info("正在关闭 worker...")
	cancel()
	wg.Wait()
	slog.Info("worker 已成功关闭")
}
