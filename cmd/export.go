package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/soldier-zzr/sqgl/internal/service"

	"github.com/spf13/cobra"
)

var (
	exportUser string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "把订单导出成飞书表头的CSV",
	Long:  `按操作人可见范围导出订单，表头与飞书表格一致，带BOM方便Excel直接打开。`,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportUser, "user", "u", "", "操作人用户名（必填）")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "输出文件路径（默认 社群转化订单_日期.csv）")
	exportCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, log, orderStore, err := setup()
	if err != nil {
		return err
	}
	defer orderStore.Close()
	defer log.Sync()

	actor, err := cfg.FindUser(exportUser)
	if err != nil {
		return err
	}

	svc := service.NewOrderService(orderStore, log)
	csvText, err := svc.ExportCSV(cmd.Context(), actor)
	if err != nil {
		return fmt.Errorf("导出订单失败: %w", err)
	}

	out := exportOut
	if out == "" {
		out = fmt.Sprintf("社群转化订单_%s.csv", time.Now().Format("2006-01-02"))
	}

	if err := os.WriteFile(out, []byte(csvText), 0o644); err != nil {
		return fmt.Errorf("写入导出文件失败: %w", err)
	}

	fmt.Printf("已导出到 %s\n", out)
	return nil
}
