package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soldier-zzr/sqgl/internal/reconcile"
	"github.com/soldier-zzr/sqgl/internal/service"

	"github.com/spf13/cobra"
)

var (
	importFile string
	importUser string
	importYes  bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "导入飞书导出的成交记录CSV",
	Long: `解析CSV文件并与订单库对账：先输出分流预览
（可新增/重复/无权限/非起盘营），确认后再提交可新增部分。`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV文件路径（必填）")
	importCmd.Flags().StringVarP(&importUser, "user", "u", "", "操作人用户名（必填）")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "跳过确认直接提交")
	importCmd.MarkFlagRequired("file")
	importCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, log, orderStore, err := setup()
	if err != nil {
		return err
	}
	defer orderStore.Close()
	defer log.Sync()

	actor, err := cfg.FindUser(importUser)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("读取CSV文件失败: %w", err)
	}

	svc := service.NewImportService(orderStore, reconcile.NewEngine(log), log)
	ctx := cmd.Context()

	preview, err := svc.Preview(ctx, string(data), filepath.Base(importFile), actor)
	if err != nil {
		return err
	}

	fmt.Println(preview.Result.PreviewMessage())

	if len(preview.Result.Addable) == 0 {
		fmt.Println("没有可新增的订单，未做任何修改")
		return nil
	}

	if !importYes && !confirm("确认导入？[y/N]: ") {
		fmt.Println("已取消导入")
		return nil
	}

	added, err := svc.Apply(ctx, preview, actor)
	if err != nil {
		return fmt.Errorf("导入中断（已入库%d条），请重新打开订单库核对后再试: %w", added, err)
	}

	fmt.Println(preview.Result.SummaryMessage(added))
	return nil
}

// confirm 读一行标准输入，仅 y/yes（不区分大小写）视为确认
func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
