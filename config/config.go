package config

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config 结构体用于存储应用程序的配置信息
type Config struct {
	MongoURI            string
	MongoDB             string
	JWTSecret           string
	JWTExpiryHours      int
	LogLevel            string
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	FrontendURL         string
	BackendURL          string
	Port                string
	BronzePostLimit     int
	GoldMembershipDays  int
	SearchRetentionDays int
	StorageBackend      string
	LocalStoragePath    string
	S3Region            string
	S3Bucket            string
	GCSProjectID        string
	GCSBucketName       string
	GCSCredentialsFile  string
	RateLimitRPS        int
	Debug               bool // 是否开启调试模式
}

// AppConfig 是全局配置变量
var AppConfig Config

// Init 函数用于初始化配置
func Init() {
	// 加载 .env 文件
	err := godotenv.Load()
	if err != nil {
		log.Printf("警告：无法加载 .env 文件: %v", err)
	}

	// 从环境变量中读取配置
	AppConfig = Config{
		MongoURI:            getEnv("MONGO_URI", ""),
		MongoDB:             getEnv("MONGO_DB", "forum"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTExpiryHours:      getEnvAsInt("JWT_EXPIRY_HOURS", 24),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		SMTPHost:            getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:            getEnvAsInt("SMTP_PORT", 465),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),
		BackendURL:          getEnv("BACKEND_URL", "http://localhost:8080"),
		Port:                getEnv("PORT", "8080"),
		BronzePostLimit:     getEnvAsInt("BRONZE_POST_LIMIT", 5),
		GoldMembershipDays:  getEnvAsInt("GOLD_MEMBERSHIP_DAYS", 365),
		SearchRetentionDays: getEnvAsInt("SEARCH_RETENTION_DAYS", 90),
		StorageBackend:      getEnv("STORAGE_BACKEND", "local"),
		LocalStoragePath:    getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		S3Region:            getEnv("S3_REGION", "us-west-2"),
		S3Bucket:            getEnv("S3_BUCKET", "your-bucket-name"),
		GCSProjectID:        getEnv("GCS_PROJECT_ID", ""),
		GCSBucketName:       getEnv("GCS_BUCKET_NAME", ""),
		GCSCredentialsFile:  getEnv("GCS_CREDENTIALS_FILE", ""),
		RateLimitRPS:        getEnvAsInt("RATE_LIMIT_RPS", 5),
		Debug:               getEnvAsBool("DEBUG", true),
	}

	validateConfig()

	// 如果是调试模式，打印更详细的路由信息
	if AppConfig.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("应用程序运行在调试模式")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("应用程序运行在生产模式")
	}

	log.Printf("配置加载完成。数据库：%s", AppConfig.MongoDB)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func validateConfig() {
	if AppConfig.MongoURI == "" {
		log.Fatal("错误：MONGO_URI 未设置")
	}
	if AppConfig.JWTSecret == "" {
		log.Fatal("错误：JWT密钥未设置")
	}
	if AppConfig.BronzePostLimit <= 0 {
		log.Fatal("错误：BRONZE_POST_LIMIT 必须大于 0")
	}
}
