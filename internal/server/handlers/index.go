package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const indexPage = `<!DOCTYPE html>
<html>
    <head>
        <title>Average weather</title>
    </head>
    <body>
        <p>Welcome to average weather!</p>
        <p>This is a RESTful service that requests weather forecasts from different sources and returns you the average data.</p>
        <p>Try the following:</p>
        <p><a href="/forecast/today/Moscow">/forecast/today/Moscow</a></p>
        <p><a href="/forecast/tomorrow/Moscow">/forecast/tomorrow/Moscow</a></p>
        <p><a href="/forecast/five-days/Moscow">/forecast/five-days/Moscow</a></p>
        <p><a href="/forecast/today/this_is_a_city_that_doesnt_exist">/forecast/today/this_is_a_city_that_doesnt_exist</a></p>
    </body>
</html>
`

func Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}
