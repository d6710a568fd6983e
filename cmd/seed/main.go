package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/repository"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/seed"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var file string
	var startYear int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 导入月度销售表, 2: 插入随机商品, 3: 创建初始管理员)")
	flag.IntVar(&n, "n", 5, "要插入的随机商品数量")
	flag.StringVar(&file, "file", "", "月度销售表的路径 (xlsx)")
	flag.IntVar(&startYear, "start-year", time.Now().Year()-2, "随机数据的起始年份")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if file == "" {
			slog.Error("请使用 -file 指定月度销售表")
			return
		}
		if err := seed.SeedRealData(repo, file); err != nil {
			slog.Error("导入月度销售表失败", slog.String("error", err.Error()))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的商品数量")
			return
		}

		rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		records := make([]domain.MonthlyRecord, 0, n*24)
		for i := 0; i < n; i++ {
			records = append(records, utils.GenerateRandomProductRecords(int32(startYear), 24, rng)...)
		}

		if err := repo.InsertMonthlyRecords(records); err != nil {
			slog.Error("无法插入随机商品", slog.String("error", err.Error()))
			return
		}

		slog.Info("插入随机商品成功", slog.Int("count", n), slog.Int("records", len(records)))
	case 3:
		if err := seed.EnsureInitialAdmin(repo, cfg); err != nil {
			slog.Error("无法创建初始管理员", slog.String("error", err.Error()))
			return
		}
		slog.Info("初始管理员已存在或创建成功", slog.String("username", cfg.InitialAdmin.Username))
	default:
		slog.Error("指定的操作非法")
	}
}
