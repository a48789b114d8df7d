package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"rscreport/internal/app"
	"rscreport/internal/logging"
	"rscreport/internal/rsc"
)

func main() {
	var configPath string
	var force bool
	flag.StringVar(&configPath, "config", "configs/config.yaml", "配置文件路径")
	flag.BoolVar(&force, "force", false, "强制卸载 Live Mount")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	svc, err := app.NewService(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "构建服务失败: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close(ctx)

	switch cmd {
	case "report":
		if flag.NArg() < 2 {
			usage()
			os.Exit(1)
		}
		var result *app.ReportResult
		result, err = svc.RunReport(ctx, flag.Arg(1))
		if err == nil {
			fmt.Printf("报表 %s 完成，共 %d 行\n", result.Name, result.Rows)
		}
	case "all":
		err = svc.RunAll(ctx)
	case "snapshot":
		if flag.NArg() < 4 {
			usage()
			os.Exit(1)
		}
		err = printMutation(svc.TakeSnapshot(ctx, flag.Arg(1), flag.Arg(2), flag.Arg(3)))
	case "pause":
		if flag.NArg() < 2 {
			usage()
			os.Exit(1)
		}
		err = printMutation(svc.PauseProtection(ctx, flag.Args()[1:]), nil)
	case "resume":
		if flag.NArg() < 2 {
			usage()
			os.Exit(1)
		}
		err = printMutation(svc.ResumeProtection(ctx, flag.Args()[1:]), nil)
	case "unmount":
		if flag.NArg() < 2 {
			usage()
			os.Exit(1)
		}
		err = printMutation(svc.Unmount(ctx, flag.Arg(1), force))
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s 执行失败: %v\n", cmd, err)
		os.Exit(1)
	}
}

func printMutation(r rsc.MutationResult, err error) error {
	if err != nil {
		return err
	}
	fmt.Printf("操作 %s 状态 %s\n", r.Operation, r.RequestStatus)
	if r.JobID != "" {
		fmt.Printf("任务 ID: %s\n", r.JobID)
	}
	if r.ErrorMessage != "" {
		fmt.Printf("API 错误: %s\n", r.ErrorMessage)
	}
	return nil
}

func usage() {
	fmt.Println("用法: rscreport [-config configs/config.yaml] <命令>")
	fmt.Println("  report <name>                    执行单份报表 (vms|events|compliance|clusters|slas|livemounts|policies)")
	fmt.Println("  all                              执行配置中的全部报表")
	fmt.Println("  snapshot <type> <objectID> <sla> 发起按需快照")
	fmt.Println("  pause <objectID>...              暂停对象保护")
	fmt.Println("  resume <objectID>...             恢复对象保护")
	fmt.Println("  unmount [-force] <mountID>       结束 Live Mount")
}
