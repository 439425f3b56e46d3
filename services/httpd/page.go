// services/httpd/page.go
package httpd

// indexPage is served on "/" and "/index.html". Self-contained: polls /json
// for live readings and posts the threshold form to /cfg.
const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Weather Station</title>
<style>
body{font-family:Arial,sans-serif;background:#1e1e1e;color:#eee;margin:0;padding:1em}
h1{text-align:center;font-size:1.4em}
.readings{display:flex;justify-content:center;gap:2em;font-size:1.2em;margin:1em 0}
form{max-width:22em;margin:0 auto}
label{display:block;margin-top:.6em}
input{width:100%;padding:.3em;background:#2b2b2b;color:#eee;border:1px solid #555}
button{margin-top:1em;width:100%;padding:.5em;background:#4CAF50;color:#fff;border:0;cursor:pointer}
.status{text-align:center;margin-top:.8em;color:#4CAF50}
</style>
</head>
<body>
<h1>Weather Station</h1>
<div class="readings">
<span id="t">--.- C</span><span id="h">--.- %</span><span id="p">---- hPa</span>
</div>
<form id="cfg">
<label>Temp min <input name="temp_min" type="number" step="0.1"></label>
<label>Temp max <input name="temp_max" type="number" step="0.1"></label>
<label>Hum min <input name="hum_min" type="number" step="0.1"></label>
<label>Hum max <input name="hum_max" type="number" step="0.1"></label>
<label>Press min <input name="press_min" type="number" step="0.1"></label>
<label>Press max <input name="press_max" type="number" step="0.1"></label>
<label>Temp offset <input name="temp_offset" type="number" step="0.1"></label>
<label>Hum offset <input name="hum_offset" type="number" step="0.1"></label>
<label>Press offset <input name="press_offset" type="number" step="0.1"></label>
<button type="submit">Save</button>
</form>
<div class="status" id="status"></div>
<script>
const statusEl=document.getElementById('status');
async function poll(){
  try{
    const r=await fetch('/json');
    if(!r.ok)throw new Error(r.status);
    const j=await r.json();
    document.getElementById('t').textContent=j.temp_aht20.toFixed(1)+' C';
    document.getElementById('h').textContent=j.hum_aht20.toFixed(1)+' %';
    document.getElementById('p').textContent=j.press_bmp280.toFixed(1)+' hPa';
  }catch(e){statusEl.textContent='Read failed: '+e.message;statusEl.style.color='#f44336';}
}
async function loadConfig(){
  try{
    const r=await fetch('/config');
    if(!r.ok)throw new Error(r.status);
    const j=await r.json();
    for(const [k,v] of Object.entries(j)){
      const el=document.querySelector('[name="'+k+'"]');
      if(el)el.placeholder=v.toFixed(1);
    }
  }catch(e){statusEl.textContent='Config load failed: '+e.message;statusEl.style.color='#f44336';}
}
document.getElementById('cfg').addEventListener('submit',async e=>{
  e.preventDefault();
  const parts=[];
  for(const el of e.target.elements){
    if(el.name&&el.value!=='')parts.push(el.name+'='+encodeURIComponent(el.value));
  }
  if(parts.length===0){statusEl.textContent='No value entered';statusEl.style.color='#f44336';return;}
  statusEl.textContent='Saving...';statusEl.style.color='#4CAF50';
  try{
    const r=await fetch('/cfg',{method:'POST',headers:{'Content-Type':'application/x-www-form-urlencoded'},body:parts.join('&')});
    const j=await r.json();
    statusEl.textContent=j.message;
    statusEl.style.color=j.status==='success'?'#4CAF50':'#f44336';
    if(j.status==='success'){e.target.reset();loadConfig();}
  }catch(e2){statusEl.textContent='Save failed: '+e2.message;statusEl.style.color='#f44336';}
});
setInterval(poll,2000);
poll();loadConfig();
</script>
</body>
</html>
`
