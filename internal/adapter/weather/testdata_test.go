package weather

const sampleCatalogXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:ldWeather="http://weather.livedoor.com/ns/rss/2.0">
<channel>
<title>livedoor 天気情報</title>
<ldWeather:source title="全国の天気予報" url="https://weather.tsukumijima.net/">
<pref title="道北">
<warn title="宗谷地方" source="https://www.jma.go.jp/bosai/warning/#area_type=class10s&amp;area_code=011000"/>
<city title="稚内" id="011000" source="https://weather.tsukumijima.net/rss/011000.xml"/>
<city title="旭川" id="012010" source="https://weather.tsukumijima.net/rss/012010.xml"/>
</pref>
<pref title="道央">
<city title="札幌" id="016010" source="https://weather.tsukumijima.net/rss/016010.xml"/>
</pref>
<pref title="東京都">
<warn title="東京地方" source=""/>
<city title="東京" id="130010" source=""/>
<city title="大島" id="130020" source=""/>
<city title="八丈島" id="130030" source=""/>
</pref>
</ldWeather:source>
</channel>
</rss>`

const sampleForecastJSON = `{
  "publicTime": "2024-04-26T11:00:00+09:00",
  "title": "東京都 東京 の天気",
  "description": {
    "headlineText": "関東甲信地方は高気圧に覆われて晴れています。",
    "bodyText": "本文"
  },
  "forecasts": [
    {"date": "2024-04-26", "dateLabel": "今日", "telop": "晴れ"},
    {"date": "2024-04-27", "dateLabel": "明日", "telop": "曇時々雨"}
  ]
}`
