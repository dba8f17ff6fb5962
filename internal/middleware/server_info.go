package middleware

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// ServerInfo exibe o banner de inicialização do serviço
func ServerInfo(port string, logger *zap.Logger) {
	hostname, _ := os.Hostname()
	goVersion := runtime.Version()
	numCPU := runtime.NumCPU()
	startTime := time.Now().Format("2006-01-02 15:04:05")

	fmt.Println("")
	fmt.Println("🚀 " + boldColor + "Ressarcimento ICMS-ST API" + resetColor)
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("📅 Started at: " + startTime)
	fmt.Println("🌐 Server URL: " + cyanColor + "http://localhost:" + port + resetColor)
	fmt.Println("💻 Hostname: " + hostname)
	fmt.Println("🔧 Go Version: " + goVersion)
	fmt.Println("⚡ CPU Cores: " + fmt.Sprintf("%d", numCPU))
	fmt.Println("")
	fmt.Println("📊 " + boldColor + "Available Endpoints:" + resetColor)
	fmt.Println("   POST " + blueColor + "/api/v1/saldos/abrir" + resetColor + "            - Abrir competência")
	fmt.Println("   GET  " + greenColor + "/api/v1/saldos" + resetColor + "                  - Visão da sessão")
	fmt.Println("   PUT  " + yellowColor + "/api/v1/saldos/nota" + resetColor + "             - Editar saldo anterior")
	fmt.Println("   POST " + blueColor + "/api/v1/saldos/confirmar" + resetColor + "        - Confirmar saldo")
	fmt.Println("   POST " + blueColor + "/api/v1/saldos/confirmar-todas" + resetColor + "  - Confirmar em lote")
	fmt.Println("   POST " + blueColor + "/api/v1/competencias/confirmar" + resetColor + "  - Travar competência")
	fmt.Println("   POST " + blueColor + "/api/v1/competencias/reabrir" + resetColor + "    - Reabrir competência")
	fmt.Println("   POST " + blueColor + "/api/v1/alocacao/importar" + resetColor + "       - Importar relatório")
	fmt.Println("   POST " + blueColor + "/api/v1/alocacao/executar" + resetColor + "       - Executar alocação FIFO")
	fmt.Println("   POST " + blueColor + "/api/v1/alocacao/salvar" + resetColor + "         - Gravar fechamento")
	fmt.Println("")
	fmt.Println("🔍 " + boldColor + "Monitoring:" + resetColor)
	fmt.Println("   📈 Health Check: " + cyanColor + "http://localhost:" + port + "/health" + resetColor)
	fmt.Println("   📊 Metrics:      " + cyanColor + "http://localhost:" + port + "/api/v1/monitoring/metrics" + resetColor)
	fmt.Println("")
	fmt.Println("⚙️  " + boldColor + "Environment:" + resetColor)
	fmt.Println("   🗄️  Database: PostgreSQL")
	fmt.Println("   🗃️  Cache: Redis")
	fmt.Println("   📝 Logging: Structured (Zap)")
	fmt.Println("")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("✨ " + boldColor + "Server is ready to handle requests!" + resetColor)
	fmt.Println("")

	logger.Info("Server started successfully",
		zap.String("port", port),
		zap.String("hostname", hostname),
		zap.String("go_version", goVersion),
		zap.Int("cpu_cores", numCPU),
		zap.String("start_time", startTime),
	)
}
